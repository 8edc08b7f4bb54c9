// seed creates the initial Director account. Idempotent: an existing account with the
// same e-mail is left untouched.
package main

import (
	"context"
	"flag"
	"time"

	"employee-directory/backend/internal/config"
	"employee-directory/backend/internal/db"
	"employee-directory/backend/internal/identity/service"
	"employee-directory/backend/internal/logging"
	"employee-directory/backend/internal/security"
	userrepo "employee-directory/backend/internal/user/repository"
)

func main() {
	firstName := flag.String("first-name", "Director", "Director first name")
	lastName := flag.String("last-name", "Director", "Director last name")
	docNumber := flag.String("doc-number", "0", "Director document number")
	flag.Parse()

	log := logging.New("info", "text", nil)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	cipher, err := security.NewCipher([]byte(cfg.DecryptKey))
	if err != nil {
		log.WithError(err).Fatal("cipher")
	}
	if err := cfg.DecryptSecrets(cipher); err != nil {
		log.WithError(err).Fatal("decrypt secrets")
	}
	if cfg.SeedDirectorEmail == "" || cfg.SeedDirectorPassword == "" {
		log.Fatal("SEED_DIRECTOR_EMAIL and SEED_DIRECTOR_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{})
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer conn.Close()

	id, created, err := service.SeedDirector(ctx, userrepo.NewPostgresRepository(conn), security.NewHasher(cfg.BcryptCost),
		service.DirectorSeed{
			Email:     cfg.SeedDirectorEmail,
			Password:  cfg.SeedDirectorPassword,
			FirstName: *firstName,
			LastName:  *lastName,
			DocNumber: *docNumber,
		}, log)
	if err != nil {
		log.WithError(err).Fatal("seed")
	}
	log.WithField("user_id", id).WithField("created", created).Info("seed done")
}
