// Package main provides the inkquest terminal client. It signs the player
// in, opens one character session, and hands the screen to the TUI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/inkquest/internal/config"
	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/command"
	"github.com/cory-johannsen/inkquest/internal/game/dice"
	"github.com/cory-johannsen/inkquest/internal/game/session"
	"github.com/cory-johannsen/inkquest/internal/gameserver"
	"github.com/cory-johannsen/inkquest/internal/observability"
	"github.com/cory-johannsen/inkquest/internal/server"
	"github.com/cory-johannsen/inkquest/internal/storage"
	"github.com/cory-johannsen/inkquest/internal/storage/postgres"
	"github.com/cory-johannsen/inkquest/internal/storage/sqlite"
	"github.com/cory-johannsen/inkquest/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and INKQUEST_* variables")
	username := flag.String("user", "", "account username (created on first use)")
	password := flag.String("password", os.Getenv("INKQUEST_PASSWORD"), "account password")
	charName := flag.String("character", "", "character name (created on first use)")
	class := flag.String("class", "chronicler", "class for a new character")
	flag.Parse()

	if *username == "" || *password == "" || *charName == "" {
		fmt.Fprintln(os.Stderr, "usage: inkquest -user NAME -password PASS -character NAME [-class KEY] [-config FILE]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	// The TUI owns stdout.
	cfg.Logging.Quiet = true
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(filepath.Dir(cfg.Storage.SQLitePath), "inkquest.log")
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, *username, *password, *charName, *class); err != nil {
		logger.Error("inkquest exited with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, username, password, charName, class string) error {
	start := time.Now()

	cat, err := loadCatalog(cfg.Game.ContentDir)
	if err != nil {
		return err
	}

	accounts, chars, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	acct, err := signIn(ctx, accounts, username, password)
	if err != nil {
		return err
	}

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Game.Seed != 0 {
		src = dice.NewSeededSource(cfg.Game.Seed)
	}
	resolver := combat.NewResolver(cat, dice.NewLoggedRoller(src, logger), logger)
	handler := gameserver.NewHandler(resolver, cat, chars, session.NewManager(), logger)

	ch, err := selectCharacter(ctx, handler, chars, acct.ID, charName, class)
	if err != nil {
		return err
	}

	snap, err := handler.Open(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	feed, _ := handler.Feed(ch.ID)

	logger.Info("session ready",
		zap.String("username", acct.Username),
		zap.Int64("character_id", ch.ID),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)

	exec := tui.NewExecutor(handler, command.DefaultRegistry(), ch.ID)
	lc := server.NewLifecycle(logger)
	lc.Add("session", server.BlockingService(func() {
		if err := handler.Close(ch.ID); err != nil {
			logger.Warn("closing session", zap.Error(err))
		}
	}))
	lc.Add("client", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			return tui.Run(ctx, exec, feed, cfg.Game.TurnDelay, snap)
		},
	})
	return lc.Run(ctx)
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	cat, err := catalog.FromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading content from %s: %w", dir, err)
	}
	return cat, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.AccountStore, storage.CharacterStore, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return postgres.NewAccountRepository(pool.DB()), postgres.NewCharacterRepository(pool.DB()), pool.Close, nil
	default:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Accounts(), db.Characters(), func() { _ = db.Close() }, nil
	}
}

// signIn authenticates the account, creating it when the username is new.
func signIn(ctx context.Context, accounts storage.AccountStore, username, password string) (storage.Account, error) {
	acct, err := accounts.Authenticate(ctx, username, password)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return accounts.Create(ctx, username, password)
	}
	return acct, err
}

// selectCharacter finds the account's character by name or creates one.
func selectCharacter(ctx context.Context, h *gameserver.Handler, chars storage.CharacterStore, accountID int64, name, class string) (*character.Character, error) {
	list, err := chars.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	for _, c := range list {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return h.CreateCharacter(ctx, accountID, name, class)
}
