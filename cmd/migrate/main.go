// migrate runs DB migrations from embedded SQL: go run ./cmd/migrate -direction up.
package main

import (
	"flag"

	"employee-directory/backend/internal/config"
	"employee-directory/backend/internal/db/migrate"
	"employee-directory/backend/internal/logging"
	"employee-directory/backend/internal/security"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	log := logging.New("info", "text", nil)

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		log.WithError(err).Fatal("migrate")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if cfg.DecryptKey != "" {
		cipher, err := security.NewCipher([]byte(cfg.DecryptKey))
		if err != nil {
			log.WithError(err).Fatal("cipher")
		}
		if err := cfg.DecryptSecrets(cipher); err != nil {
			log.WithError(err).Fatal("decrypt secrets")
		}
	}

	if err := migrate.Run(cfg.DatabaseURL, dir, log); err != nil {
		log.WithError(err).Fatal("migrate")
	}
}
