package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
	"github.com/trezcool/bulletin/fs"
	emailsvc "github.com/trezcool/bulletin/services/email"
	logsvc "github.com/trezcool/bulletin/services/logger"
	"github.com/trezcool/bulletin/storage/database"
	sqlxrepos "github.com/trezcool/bulletin/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewStdLogger(std)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()

	// set up services
	validate, translator := core.NewValidator()
	grading.InitValidators(validate, translator)
	gradingSvc := grading.NewService(sqlxrepos.NewGradingRepository(db), validate, logger, conf.Grading)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		gradingSvc: gradingSvc,
		mailSvc:    func() (core.EmailService, error) { return newMailService(conf, std, logger) },
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %+v\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func newMailService(conf *core.Config, std *log.Logger, logger core.Logger) (core.EmailService, error) {
	templates, err := core.ParseEmailTemplates(appfs.FS, "templates/email", conf.AppName, conf.Debug)
	if err != nil {
		return nil, errors.Wrap(err, "parsing email templates")
	}
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, templates, std), nil
	}
	return emailsvc.NewSendgridService(conf, templates, logger), nil
}
