package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/mail"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
	appfs "github.com/trezcool/bulletin/fs"
	emailsvc "github.com/trezcool/bulletin/services/email"
	logsvc "github.com/trezcool/bulletin/services/logger"
	"github.com/trezcool/bulletin/storage/database"
	"github.com/trezcool/bulletin/storage/database/dummy"
	testutil "github.com/trezcool/bulletin/tests"
)

type cliEnv struct {
	cli     *commandLine
	repo    grading.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	out     *bytes.Buffer
}

func setup(t *testing.T) cliEnv {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{
		AppName:          "Bulletin",
		DefaultFromEmail: mail.Address{Name: "Bulletin", Address: "noreply@bulletin.test"},
	}
	validate, translator := core.NewValidator()
	grading.InitValidators(validate, translator)

	out := new(bytes.Buffer)
	repo := dummydb.NewGradingRepository(db)
	templates, err := core.ParseEmailTemplates(appfs.FS, "templates/email", conf.AppName, true)
	require.NoError(t, err)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, templates)

	return cliEnv{
		cli: &commandLine{
			gradingSvc: grading.NewService(repo, validate, logsvc.NewStdLogger(log.New(io.Discard, "", 0)), conf.Grading),
			mailSvc:    func() (core.EmailService, error) { return mailSvc, nil },
			out:        out,
		},
		repo:    repo,
		mailSvc: mailSvc,
		out:     out,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	env := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "results: no args", args: []string{"results"}, wantErr: errHelp},
		{name: "results: no term", args: []string{"results", "-class", "6eA"}, wantErr: errHelp},
		{name: "results: unknown term", args: []string{"results", "-class", "6eA", "-term", "4"}, wantErr: grading.ErrUnknownTerm},
		{name: "mailresults: no recipient", args: []string{"mailresults", "-class", "6eA", "-term", "1"}, wantErr: errHelp},
		{
			name:       "mailresults: invalid recipient",
			args:       []string{"mailresults", "-class", "6eA", "-term", "1", "-to", "lol"},
			wantErrStr: `invalid email "lol"`,
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, env.cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "grade_comments", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, env.cli.run(args))
		})
	}
}

func seedClass(t *testing.T, repo grading.Repository) {
	maths := testutil.CreateSubject(t, repo, "6eA", "Maths", testutil.Coef(2))
	testutil.CreateGrade(t, repo, maths, "A", 18, nil, grading.Devoir, grading.Term1)
	testutil.CreateGrade(t, repo, maths, "A", 14, nil, grading.Composition, grading.Term1)
	testutil.CreateGrade(t, repo, maths, "B", 10, nil, grading.Devoir, grading.Term1)
	testutil.CreateGrade(t, repo, maths, "C", 5, nil, grading.Devoir, grading.Term1)
	testutil.CreateGrade(t, repo, maths, "C", 7, nil, grading.Composition, grading.Term1)
	testutil.CreateGrade(t, repo, maths, "C", 13, nil, grading.Composition, grading.Term2)
}

func Test_commandLine_results(t *testing.T) {
	env := setup(t)
	seedClass(t, env.repo)

	t.Run("term", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, env.cli.run([]string{"admin", "results", "-class", "6eA", "-term", "t1"}))

		want := "6eA - 1er trimestre\n\n" +
			"RANK  STUDENT  AVERAGE  STATUS\n" +
			"1     A        16.00    admis\n" +
			"2     B        10.00    admis\n" +
			"3     C        6.00     échec\n" +
			"\nstudents: 3  average: 10.67  highest: 16.00  lowest: 6.00  passed: 2 (66.67%)\n"
		assert.Equal(t, want, env.out.String())
	})

	t.Run("annual", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, env.cli.run([]string{"admin", "results", "-class", "6eA", "-annual"}))

		want := "RANK  STUDENT  T1     T2     T3  AVERAGE  STATUS\n" +
			"1     A        16.00  -      -   16.00    admis\n" +
			"2     B        10.00  -      -   10.00    admis\n" +
			"3     C        6.00   13.00  -   9.50     échec\n"
		assert.Equal(t, want, env.out.String())
	})
}

func Test_commandLine_mailResults(t *testing.T) {
	env := setup(t)
	seedClass(t, env.repo)

	err := env.cli.run([]string{"admin", "mailresults", "-class", "6eA", "-term", "1", "-to", "dir@school.test, Parents <parents@school.test>"})
	require.NoError(t, err)
	assert.Contains(t, env.out.String(), "results of 6eA (1er trimestre) sent to 2 recipient(s)")

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, []mail.Address{
		{Address: "dir@school.test"},
		{Name: "Parents", Address: "parents@school.test"},
	}, sent[0].To)
	assert.Equal(t, "Résultats 6eA - 1er trimestre", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Effectif: 3")
	assert.Contains(t, sent[0].HTMLContent, "<td>C</td>")
}

func Test_commandLine_mailServiceFailure(t *testing.T) {
	env := setup(t)
	seedClass(t, env.repo)
	env.cli.mailSvc = func() (core.EmailService, error) {
		return nil, errors.New("template: pattern matches no files")
	}

	require.NoError(t, env.cli.run([]string{"admin", "results", "-class", "6eA", "-term", "1"}))

	err := env.cli.run([]string{"admin", "mailresults", "-class", "6eA", "-term", "1", "-to", "dir@school.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting up email service")
	assert.Empty(t, env.mailSvc.SentMessages())
}

func Test_newMailService(t *testing.T) {
	conf := &core.Config{
		Debug:            true,
		AppName:          "Bulletin",
		DefaultFromEmail: mail.Address{Address: "noreply@bulletin.test"},
	}
	std := log.New(io.Discard, "", 0)

	svc, err := newMailService(conf, std, logsvc.NewStdLogger(std))
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func Test_commandLine_migrateArgs(t *testing.T) {
	env := setup(t)
	defer func(f func(string, *sql.DB, fs.FS, string, ...string) error) { gooseRunFunc = f }(gooseRunFunc)

	var gotCommand, gotDir string
	var gotArgs []string
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		gotCommand, gotDir, gotArgs = command, dir, args
		return nil
	}

	require.NoError(t, env.cli.run([]string{"admin", "migrate", "down-to", "1"}))
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, database.MigrationsDir, gotDir)
	assert.Equal(t, []string{"1"}, gotArgs)
}
