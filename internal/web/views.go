// Package web holds the server-rendered admin surface.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aklujeats/aklujeats/internal/models"
)

//go:embed views/*.tmpl
var viewsFS embed.FS

var funcs = template.FuncMap{
	"rupees": FormatRupees,
	"statusLabel": func(s models.OrderStatus) string {
		return strings.ReplaceAll(string(s), "_", " ")
	},
	"datetime": func(t time.Time) string {
		return t.Local().Format("02 Jan 2006 15:04")
	},
}

// Templates parses the embedded views for gin's HTML renderer
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(viewsFS, "views/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse views: %w", err)
	}
	return tmpl, nil
}

// FormatRupees renders an amount in paise as rupees
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paise/100, paise%100)
}
