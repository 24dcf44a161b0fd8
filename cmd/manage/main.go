// cmd/manage/main.go
//
// Operator commands.
//
// Usage
// -----
//
//	manage migrate
//	manage createsuperuser -email admin@example.com -password '…'
//	manage worker [-workers N]
//	manage enqueue -task dummy -args '["a", "b"]'
//
// Every command loads the same configuration as cmd/web.  `worker` and
// `enqueue` need the AMQP broker; an in-memory queue cannot cross process
// boundaries.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yanizio/apikit/internal/apperr"
	"github.com/yanizio/apikit/internal/config"
	"github.com/yanizio/apikit/internal/database"
	"github.com/yanizio/apikit/internal/logger"
	"github.com/yanizio/apikit/internal/tasks"
	"github.com/yanizio/apikit/internal/users"
	"github.com/yanizio/apikit/internal/validation"
)

type command func(ctx context.Context, cfg *config.Config, args []string) error

var commands = map[string]command{
	"migrate":         migrate,
	"createsuperuser": createSuperuser,
	"worker":          worker,
	"enqueue":         enqueue,
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: manage <migrate|createsuperuser|worker|enqueue> [flags]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Console("info")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("load config", "err", err)
	}
	logger.Console(cfg.Log.Level)

	if err := cmd(ctx, cfg, os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		zap.S().Fatalw(os.Args[1]+" failed", "err", describe(err))
	}
}

// describe flattens validation errors into their field messages.
func describe(err error) any {
	if e, ok := apperr.As(err); ok && len(e.Fields) > 0 {
		return e.Fields
	}
	return err.Error()
}

/*──────────────────────────────── commands ────────────────────────────────*/

func migrate(ctx context.Context, cfg *config.Config, _ []string) error {
	db, err := database.Open(ctx, cfg.Database.DataSource())
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(ctx, db)
}

func createSuperuser(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	email := fs.String("email", "", "superuser email (required)")
	password := fs.String("password", "", "superuser password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		return validation.Field("password", "This field is required.")
	}
	if err := validation.StrongPassword(*password); err != nil {
		return validation.Field("password", validation.Messages(err)...)
	}

	db, err := database.Open(ctx, cfg.Database.DataSource())
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := users.NewStore(db).CreateSuperuser(ctx, users.NewUser{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	zap.S().Infow("superuser created", "id", u.ID, "email", u.Email)
	return nil
}

func worker(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	n := fs.Int("workers", cfg.Tasks.Workers, "concurrent task goroutines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := openRemoteQueue(cfg, *n)
	if err != nil {
		return err
	}
	defer q.Close()
	return tasks.NewWorker(q, tasks.NewRegistry(), *n).Run(ctx)
}

func enqueue(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	name := fs.String("task", tasks.DummyName, "registered task name")
	raw := fs.String("args", "[]", "JSON array of positional arguments")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var targs []any
	if err := json.Unmarshal([]byte(*raw), &targs); err != nil {
		return fmt.Errorf("-args must be a JSON array: %w", err)
	}

	q, err := openRemoteQueue(cfg, 1)
	if err != nil {
		return err
	}
	defer q.Close()

	m, err := tasks.Enqueue(ctx, q, *name, targs...)
	if err != nil {
		return err
	}
	zap.S().Infow("task enqueued", "id", m.ID, "task", m.Name)
	return nil
}

func openRemoteQueue(cfg *config.Config, prefetch int) (tasks.Queue, error) {
	if cfg.Tasks.Broker != tasks.BrokerAMQP {
		return nil, fmt.Errorf("broker %q is in-process only; set tasks.broker to amqp", cfg.Tasks.Broker)
	}
	return tasks.Open(cfg.Tasks.Broker, cfg.Tasks.AMQPURL, cfg.Tasks.Queue, cfg.Tasks.Buffer, prefetch)
}
