// Storefront client core.
// Commands for the session and cart, a stdio MCP server, and a local mock backend.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/storefront/internal/api"
	"github.com/jaakkos/storefront/internal/app"
	"github.com/jaakkos/storefront/internal/config"
	"github.com/jaakkos/storefront/internal/domain"
	"github.com/jaakkos/storefront/internal/repository"
	"github.com/jaakkos/storefront/internal/tools/shop"
)

// Version is set by -ldflags at build time.
var Version = "dev"

const usage = `usage: storefront <command> [args]

  status                                    show session and cart
  signin <username> <password>              sign in and store the token
  signup <username> <email> <password> <confirm>
  signout                                   forget the stored token
  products                                  list the catalog
  product <id>                              show one product
  cart                                      show the cart
  cart add <id> | cart remove <id> | cart clear
  checkout                                  empty the cart (signed in)
  watch                                     print changes made by other processes
  serve                                     run the MCP server on stdio
  mock-backend [addr]                       run a local store API (default :8080)
  version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "--version", "-v", "version":
		fmt.Println("storefront " + Version)
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	}

	cfg := loadConfig(log.New(os.Stderr, "[storefront] ", 0))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "mock-backend":
		logger := setupLogger(cfg.LogFilePath(), true)
		addr := ":8080"
		if len(args) > 0 {
			addr = args[0]
		}
		err = runMockBackend(ctx, addr, logger)
	case "serve":
		err = runServe(ctx, cfg, setupLogger(cfg.LogFilePath(), false))
	case "watch":
		err = runWatch(ctx, cfg, setupLogger(cfg.LogFilePath(), true))
	default:
		err = runCommand(ctx, cfg, setupLogger(cfg.LogFilePath(), false), cmd, args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runtime is the wired object graph shared by every command.
type runtime struct {
	cfg     *config.Config
	store   repository.Store
	session *app.SessionManager
	cart    *app.CartStore
	catalog *app.Catalog
}

// bootstrap opens storage, builds the API clients and restores persisted state.
func bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*runtime, error) {
	store, err := repository.NewKeyValueStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	client, err := api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout()})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if !client.Configured() {
		logger.Printf("Warning: %s is not set; remote calls will fail", config.EnvAPIBaseURL)
	}

	opts := []app.Option{app.WithSignalFile(cfg.SignalFilePath())}
	var cartStore app.KeyValueStore
	if cfg.Cart.Persist {
		cartStore = store
	}

	rt := &runtime{
		cfg:     cfg,
		store:   store,
		session: app.NewSessionManager(store, api.NewIdentityClient(client), logger, opts...),
		cart:    app.NewCartStore(cartStore, logger, opts...),
		catalog: app.NewCatalog(api.NewCatalogClient(client), logger),
	}
	rt.session.Restore(ctx)
	rt.cart.Restore(ctx)
	return rt, nil
}

func (rt *runtime) Close() error { return rt.store.Close() }

// runCommand runs one short-lived CLI command and prints its result.
func runCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, cmd string, args []string) error {
	rt, err := bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	switch cmd {
	case "status":
		fmt.Print(shop.FormatSession(rt.session.Snapshot()))
		printCartSummary(rt.cart.Snapshot())
	case "signin":
		if len(args) != 2 {
			return fmt.Errorf("usage: storefront signin <username> <password>")
		}
		if err := rt.session.SignIn(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Signed in as " + args[0])
	case "signup":
		if len(args) != 4 {
			return fmt.Errorf("usage: storefront signup <username> <email> <password> <confirm>")
		}
		if err := rt.session.SignUp(ctx, args[0], args[2], args[3], args[1]); err != nil {
			return err
		}
		fmt.Println("Account created; signed in as " + args[0])
	case "signout":
		rt.session.SignOut(ctx)
		fmt.Println("Signed out")
	case "products":
		products, err := rt.catalog.Products(ctx)
		if err != nil {
			return err
		}
		fmt.Print(shop.FormatProducts(products))
	case "product":
		id, err := productIDArg(args)
		if err != nil {
			return err
		}
		p, err := rt.catalog.Product(ctx, id)
		if err != nil {
			return err
		}
		fmt.Print(shop.FormatProduct(p))
	case "cart":
		return runCart(ctx, rt, args)
	case "checkout":
		if !rt.session.Snapshot().IsAuthenticated() {
			return fmt.Errorf("sign in before checking out")
		}
		if rt.cart.Snapshot().Count() == 0 {
			return fmt.Errorf("cart is empty")
		}
		done := rt.cart.Checkout()
		fmt.Printf("Checked out %d item(s), total $%s\n", done.Count(), domain.FormatAmount(done.Total()))
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func runCart(ctx context.Context, rt *runtime, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "add":
			id, err := productIDArg(args[1:])
			if err != nil {
				return err
			}
			p, err := rt.catalog.Product(ctx, id)
			if err != nil {
				return err
			}
			rt.cart.Add(p)
		case "remove":
			id, err := productIDArg(args[1:])
			if err != nil {
				return err
			}
			rt.cart.Remove(id)
		case "clear":
			rt.cart.Clear()
		default:
			return fmt.Errorf("unknown cart command %q", args[0])
		}
		if err := rt.cart.LastPersistError(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cart not saved: %v\n", err)
		}
	}
	fmt.Println(shop.FormatCart(rt.cart.Snapshot()))
	return nil
}

func printCartSummary(c *domain.Cart) {
	fmt.Printf("Cart: %d item(s), $%s\n", c.Count(), domain.FormatAmount(c.Total()))
}

func productIDArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("product id required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s", app.MsgInvalidProductID)
	}
	return id, nil
}

// runServe runs the MCP server on stdio. State written by other storefront
// processes is picked up through the notify signal file.
func runServe(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.Println("Starting storefront MCP server...")
	logger.Printf("Profile: %s, storage: %s", cfg.Profile, cfg.Storage.Backend)

	rt, err := bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	hooks := &server.Hooks{}
	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		if message != nil {
			logger.Printf("Calling tool: %s", message.Params.Name)
		}
	})
	mcpServer := server.NewMCPServer("storefront", Version, server.WithHooks(hooks))
	shop.Register(mcpServer, rt.session, rt.cart, rt.catalog, logger)

	w := app.NewWatcher(cfg.SignalFilePath(), func() {
		logger.Println("Watcher: storage changed, reloading")
		rt.session.Restore(ctx)
		rt.cart.Restore(ctx)
	}, logger)
	go w.Start(ctx)
	defer w.Stop()

	logger.Println("Stdio ready")
	stdioSrv := server.NewStdioServer(mcpServer)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Println("Shutdown complete")
	return nil
}

// runWatch prints session and cart changes until interrupted.
func runWatch(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	rt, err := bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.session.Subscribe(func(s domain.Session) {
		fmt.Print(shop.FormatSession(s))
	})
	rt.cart.Subscribe(printCartSummary)

	fmt.Print(shop.FormatSession(rt.session.Snapshot()))
	printCartSummary(rt.cart.Snapshot())
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.SignalFilePath())

	w := app.NewWatcher(cfg.SignalFilePath(), func() {
		rt.session.Restore(ctx)
		rt.cart.Restore(ctx)
	}, logger)
	w.Start(ctx)
	return nil
}

// setupLogger creates a logger that writes to a log file and optionally stderr.
// When echo is set and stderr is a terminal, logs go to both stderr and the file.
// Without a usable log file, logs go to stderr.
func setupLogger(logFilePath string, echo bool) *log.Logger {
	var writers []io.Writer

	stderrIsTerminal := false
	if info, err := os.Stderr.Stat(); err == nil {
		stderrIsTerminal = (info.Mode() & os.ModeCharDevice) != 0
	}

	hasLogFile := false
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err == nil {
			f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
				hasLogFile = true
			} else {
				fmt.Fprintf(os.Stderr, "[storefront] Warning: cannot open log file %s: %v\n", logFilePath, err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "[storefront] Warning: cannot create log dir %s: %v\n", filepath.Dir(logFilePath), err)
		}
	}

	if (echo && stderrIsTerminal) || !hasLogFile {
		writers = append(writers, os.Stderr)
	}

	return log.New(io.MultiWriter(writers...), "[storefront] ", log.LstdFlags|log.Lshortfile)
}

// loadConfig loads .env, the YAML file named by STOREFRONT_CONFIG and
// environment overrides. A broken config file falls back to defaults.
func loadConfig(logger *log.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Printf("Warning: failed to load config: %v, using defaults", err)
		cfg = config.DefaultConfig()
		cfg.ApplyEnv(os.Getenv)
		if verr := cfg.Validate(); verr != nil {
			logger.Printf("Warning: %v, using sqlite storage", verr)
			cfg.Storage.Backend = config.BackendSQLite
		}
	}
	return cfg
}
