package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
	"github.com/trezcool/bulletin/fs"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "Bulletin",
		DefaultFromEmail: mail.Address{Name: "Bulletin", Address: "noreply@bulletin.test"},
		SendgridApiKey:   "SG.test",
	}
}

func parseTemplates(t *testing.T) *core.EmailTemplates {
	tmpls, err := core.ParseEmailTemplates(appfs.FS, "templates/email", "Bulletin", true)
	require.NoError(t, err)
	return tmpls
}

func classReport() grading.ClassReport {
	results := []grading.StudentResult{
		{StudentID: "amina", GeneralAverage: 14.86, Rank: 1, Status: grading.Admis},
		{StudentID: "kofi", GeneralAverage: 8.5, Rank: 2, Status: grading.Echec},
	}
	return grading.ClassReport{
		ClassID: "6eA",
		Term:    grading.Term1,
		Results: results,
		Summary: grading.Summarize(results),
	}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := testConfig()
	svc := NewConsoleServiceMock(conf, parseTemplates(t))
	parent := mail.Address{Name: "Parent", Address: "parent@example.com"}

	tests := []struct {
		name    string
		msg     *core.EmailMessage
		wantCnt int
	}{
		{
			name:    "no recipients",
			msg:     &core.EmailMessage{Subject: "hi", BodyStr: "hello"},
			wantCnt: 0,
		},
		{
			name:    "no content",
			msg:     &core.EmailMessage{To: []mail.Address{parent}, Subject: "hi"},
			wantCnt: 0,
		},
		{
			name:    "plain body",
			msg:     &core.EmailMessage{To: []mail.Address{parent}, Subject: "hi", BodyStr: "hello"},
			wantCnt: 1,
		},
		{
			name:    "class results template",
			msg:     grading.NewClassResultsEmail(classReport(), parent),
			wantCnt: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SendMessages(tc.msg)
			assert.NoError(t, err)
			assert.Len(t, svc.SentMessages(), tc.wantCnt)
		})
	}

	sent := svc.SentMessages()
	require.Len(t, sent, 2)
	report := sent[1]
	assert.Contains(t, report.TextContent, "Résultats de la classe 6eA (1er trimestre)")
	assert.Contains(t, report.TextContent, "amina")
	assert.Contains(t, report.TextContent, "14.86")
	assert.Contains(t, report.TextContent, "Admis: 1 (50.00%)")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(report.TextContent), "Bulletin"))
	assert.Contains(t, report.HTMLContent, "<td>kofi</td>")
	assert.Contains(t, report.HTMLContent, "échec")
}

func TestConsoleService_format(t *testing.T) {
	svc := NewConsoleService(testConfig(), nil, nil).(*consoleService)
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "a@example.com"}, {Address: "b@example.com"}},
		Subject:     "Résultats",
		TextContent: "hello",
		HTMLContent: "<p>hello</p>",
	}

	body, err := svc.format(msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Bulletin] Résultats\r\n")
	assert.Contains(t, body, "To: <a@example.com>, <b@example.com>\r\n")
	assert.NotContains(t, body, "CC:")
	assert.Contains(t, body, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, body, "Content-Type: text/html; charset=utf-8")
	assert.Contains(t, body, "<p>hello</p>")
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConfig(), nil, nil).(*sendgridService)
	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Parent", Address: "parent@example.com"}},
		Cc:          []mail.Address{{Address: "teacher@example.com"}},
		Subject:     "Résultats",
		TextContent: "hello",
	})

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Bulletin] Résultats", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "parent@example.com", p.To[0].Address)
	require.Len(t, p.CC, 1)
	assert.Equal(t, "noreply@bulletin.test", m.From.Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
