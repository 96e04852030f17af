package core

import (
	"bytes"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName string
		Data    interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently and waits for them to be sent.
		SendMessages(messages ...*EmailMessage) error
	}

	// EmailTemplates holds parsed `<name>.txt` & `<name>.gohtml` templates.
	// Each template defines "content" and is executed through the "base" layout of `_base.<ext>`.
	EmailTemplates struct {
		appName string
		text    map[string]*texttmpl.Template
		html    map[string]*htmltmpl.Template
	}
)

// ParseEmailTemplates parses every template in `dir` of `fsys`. Files starting with "_" are layouts.
// In strict mode (debug & tests), templates fail on missing keys.
func ParseEmailTemplates(fsys fs.FS, dir, appName string, strict bool) (*EmailTemplates, error) {
	tmpls := &EmailTemplates{
		appName: appName,
		text:    make(map[string]*texttmpl.Template),
		html:    make(map[string]*htmltmpl.Template),
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}
	for _, entry := range entries {
		fname := entry.Name()
		ext := path.Ext(fname)
		if entry.IsDir() || strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)

		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(fsys, path.Join(dir, "_base.txt"), path.Join(dir, fname))
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			tmpls.text[name] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFS(fsys, path.Join(dir, "_base.gohtml"), path.Join(dir, fname))
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			tmpls.html[name] = tmpl
		}
	}
	return tmpls, nil
}

func (m *EmailMessage) renderText(tmpls *EmailTemplates, data ContextData) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	tmpl, ok := tmpls.text[m.TemplateName]
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
		return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML(tmpls *EmailTemplates, data ContextData) error {
	tmpl, ok := tmpls.html[m.TemplateName]
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
		return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
	}
	m.HTMLContent = buff.String()
	return nil
}

// Render fills TextContent & HTMLContent. A nil EmailTemplates only handles BodyStr.
func (m *EmailMessage) Render(tmpls *EmailTemplates) error {
	if m.TemplateName == "" || tmpls == nil {
		m.TextContent = m.BodyStr
		return nil
	}
	data := ContextData{AppName: tmpls.appName, Data: m.TemplateData}
	if err := m.renderText(tmpls, data); err != nil {
		return err
	}
	return m.renderHTML(tmpls, data)
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
