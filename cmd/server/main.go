package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	_ "taskup/docs"
	"taskup/internal/auth"
	"taskup/internal/config"
	"taskup/internal/database"
	"taskup/internal/repository"
	"taskup/internal/server"
)

// @title           TaskUp API
// @version         1.0
// @description     Team task tracking with points, achievements and rewards.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	app := &cli.App{
		Name:  "taskup",
		Usage: "TaskUp API server",
		Commands: []*cli.Command{
			commandServe(),
			commandMigrate(),
			commandToken(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func commandServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "apply pending migrations before serving",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			s, err := server.Init(cfg)
			if err != nil {
				return fmt.Errorf("server initialization failed: %w", err)
			}
			if c.Bool("migrate") {
				if err := database.MigrateUp(s.DB); err != nil {
					return err
				}
			}

			return s.Run()
		},
	}
}

func commandMigrate() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					db, err := database.Connect(cfg)
					if err != nil {
						return err
					}
					return database.MigrateUp(db)
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Value: 1,
						Usage: "number of migrations to roll back",
					},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps < 1 {
						return fmt.Errorf("steps must be positive, got %d", steps)
					}
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					db, err := database.Connect(cfg)
					if err != nil {
						return err
					}
					return database.MigrateDown(db, steps)
				},
			},
		},
	}
}

// commandToken issues a session token for an existing user. The API has no
// login endpoint, so tokens for development and ops come from here.
func commandToken() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a JWT for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "org",
				Usage: "active organization id, defaults to the user's first organization",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}

			user, err := repository.NewUserRepository(db).FindByEmail(ctx, c.String("email"))
			if err != nil {
				return fmt.Errorf("%s: %w", c.String("email"), err)
			}

			members := repository.NewMemberRepository(db)
			var orgID uuid.UUID
			if raw := c.String("org"); raw != "" {
				if orgID, err = uuid.Parse(raw); err != nil {
					return fmt.Errorf("invalid org id: %w", err)
				}
				if _, err := members.Get(ctx, orgID, user.ID); err != nil {
					return err
				}
			} else if orgID, err = members.FirstOrganization(ctx, user.ID); err != nil {
				return err
			}

			tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
			token, err := tokens.GenerateToken(auth.Session{UserID: user.ID, ActiveOrganizationID: orgID})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
