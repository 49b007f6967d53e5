package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/appvote/portal/internal/app"
	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/db/postgres"
	"github.com/appvote/portal/internal/db/sqlite"
	"github.com/appvote/portal/internal/models"
)

// contestctl is an operator tool for contest maintenance: applying the
// contest schema to a fresh database, probing an existing one, and
// driving week transitions without going through the HTTP surface.
func main() {
	var dbURL = flag.String("db-url", "", "postgres connection string (defaults to DATABASE_URL)")
	var dbFile = flag.String("db-file", "", "sqlite database file, used instead of postgres when set")
	var applySchema = flag.Bool("apply-schema", false, "create the contest tables and seed the default weeks")
	var probe = flag.Bool("probe", false, "check whether the contest tables exist")
	var list = flag.Bool("list", false, "print the contest weeks")
	var activate = flag.Int64("activate", 0, "activate the week with this id")
	var end = flag.Int64("end", 0, "end the week with this id")
	flag.Parse()

	_ = godotenv.Load()

	client, err := openClient(*dbURL, *dbFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	service := app.NewContestService(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := service.Initialize(ctx); err != nil {
		log.Fatal(err.Error())
	}

	// Operator invocations act with admin rights; there is no session
	// exchange on this path.
	token := models.UserToken{
		ID:       "contestctl",
		Nickname: "contestctl",
		Role:     models.RoleAdmin,
	}

	ran := false

	if *applySchema {
		ran = true
		if err := service.ApplyContestSchema(token); err != nil {
			log.Fatal(err.Error())
		}
		log.Println("Contest schema applied and default weeks seeded")
	}

	if *probe {
		ran = true
		if err := service.ProbeContestSchema(); err != nil {
			log.Fatal(err.Error())
		}
		log.Println("Contest schema present")
	}

	if *activate != 0 {
		ran = true
		if err := service.UpdateContestStatus(token, *activate, models.StatusActive); err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Week %d activated", *activate)
	}

	if *end != 0 {
		ran = true
		if err := service.UpdateContestStatus(token, *end, models.StatusEnded); err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Week %d ended", *end)
	}

	if *list {
		ran = true
		printWeeks(service)
	}

	if !ran {
		flag.Usage()
		os.Exit(2)
	}
}

func openClient(dbURL, dbFile string) (db.Client, error) {
	if dbFile != "" {
		client, err := sqlite.NewClient(dbFile)
		if err != nil {
			return nil, err
		}
		log.Println("Sqlite client initialized")
		return client, nil
	}

	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("no database configured; pass -db-url, -db-file, or set DATABASE_URL")
	}

	client, err := postgres.NewClient(dbURL)
	if err != nil {
		return nil, err
	}
	log.Println("Postgres client initialized")
	return client, nil
}

func printWeeks(service *app.ContestService) {
	weeks := service.GetAllWeeks()
	if len(weeks) == 0 {
		log.Println("No contest weeks")
		return
	}

	current := service.CurrentWeek()

	for _, w := range weeks {
		marker := " "
		if current != nil && current.ID == w.ID {
			marker = "*"
		}

		dates := ""
		if w.StartDate != nil {
			dates += " start=" + w.StartDate.Format("2006-01-02")
		}
		if w.EndDate != nil {
			dates += " end=" + w.EndDate.Format("2006-01-02")
		}

		fmt.Printf("%s %2d %-10s %s%s\n", marker, w.ID, w.Status, w.Name, dates)
	}
}
