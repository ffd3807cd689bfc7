// Package views holds the server-rendered HTML pages. Templates are embedded so
// the api binary has no runtime file dependencies.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"jobboard/internal/database"
)

//go:embed templates/*.tmpl
var files embed.FS

// 页面模板名，与 templates/ 下的文件名一致。
const (
	Register  = "register.tmpl"
	Login     = "login.tmpl"
	Jobs      = "jobs.tmpl"
	FindJobs  = "findjobs.tmpl"
	PostJob   = "postjob.tmpl"
	ContactUs = "contactus.tmpl"
	Skills    = "skills.tmpl"
)

// Load 解析全部内嵌模板，供 gin.Engine.SetHTMLTemplate 使用。
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	return tmpl, nil
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"salary":     formatSalary,
		"date":       func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"tagLabels":  tagLabels,
		"flashClass": flashClass,
	}
}

// formatSalary 输出带千分位的金额，例如 85000 -> "$85,000"。
func formatSalary(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tagLabels(tags []database.Tag) string {
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		labels = append(labels, tag.Label)
	}
	return strings.Join(labels, ", ")
}

func flashClass(kind string) string {
	switch kind {
	case "success":
		return "alert alert-success"
	case "error":
		return "alert alert-danger"
	default:
		return "alert alert-info"
	}
}
