package appfs_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
	"github.com/trezcool/bulletin/fs"
)

func TestFS_files(t *testing.T) {
	files := []string{
		"migrations/00001_create_grading_tables.sql",
		"migrations/00002_subject_name_case_insensitive.sql",
		"templates/email/_base.txt",
		"templates/email/_base.gohtml",
		"templates/email/class_results.txt",
		"templates/email/class_results.gohtml",
	}
	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			_, err := fs.Stat(appfs.FS, name)
			assert.NoError(t, err)
		})
	}
}

func TestFS_emailTemplates(t *testing.T) {
	tmpls, err := core.ParseEmailTemplates(appfs.FS, "templates/email", "Bulletin", true)
	require.NoError(t, err)

	results := []grading.StudentResult{
		{StudentID: "amina", GeneralAverage: 14.5, Rank: 1, Status: grading.Admis},
		{StudentID: "kofi", GeneralAverage: 8, Rank: 2, Status: grading.Echec},
	}
	msg := grading.NewClassResultsEmail(grading.ClassReport{
		ClassID: "6eA",
		Term:    grading.Term1,
		Results: results,
		Summary: grading.Summarize(results),
	})
	require.NoError(t, msg.Render(tmpls))

	assert.Contains(t, msg.TextContent, "Résultats de la classe 6eA (1er trimestre)")
	assert.Contains(t, msg.TextContent, "Bulletin") // from the layout
	assert.Contains(t, msg.HTMLContent, "<td>amina</td>")
	assert.Contains(t, msg.HTMLContent, "Bulletin")
}
