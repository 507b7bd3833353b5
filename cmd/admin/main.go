// Command admin creates an administrator account. The password is read from
// the terminal without echo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/memory"
	myPostgresRepo "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/postgres"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/social-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/migrate"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// readPassword is swapped in tests.
var readPassword = term.ReadPassword

type registrar interface {
	Register(ctx context.Context, in dto.SignupDTO, role model.Role) (model.Account, error)
}

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"), "")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}
	svc := appsvc.New(
		myPostgresRepo.NewPostgresUserRepo(db),
		memory.NewTokenRepo(),
		jwtUtil,
		password.NewHasher(cfg.PasswordPepper, nil),
		appsvc.NewValidator(),
	)

	if err := run(context.Background(), os.Args[1:], os.Stdout, svc); err != nil {
		zapLog.Fatal("create admin", zap.Error(err))
	}
}

func run(ctx context.Context, args []string, w io.Writer, reg registrar) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(w)
	username := fs.String("username", "", "admin username")
	email := fs.String("email", "", "admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("-username and -email are required")
	}

	pwd, err := prompt(w, "Password: ")
	if err != nil {
		return err
	}
	confirm, err := prompt(w, "Repeat password: ")
	if err != nil {
		return err
	}
	if pwd != confirm {
		return errors.New("passwords do not match")
	}

	acc, err := reg.Register(ctx, dto.SignupDTO{Username: *username, Password: pwd, Email: *email}, model.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "admin %s created with id %s\n", acc.Username, acc.ID)
	return err
}

func prompt(w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
