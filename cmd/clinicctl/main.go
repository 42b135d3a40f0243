// clinicctl is a small operator CLI over the clinic API client: it keeps its
// access token in a local sqlite file, the same way the web console keeps it
// in browser storage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/otolor/clinic-client/internal/services"
	"github.com/otolor/clinic-client/pkg/apiclient"
	"github.com/otolor/clinic-client/pkg/config"
	"github.com/otolor/clinic-client/pkg/logging"
	"github.com/otolor/clinic-client/pkg/rbac"
	"github.com/otolor/clinic-client/pkg/session"
	"github.com/otolor/clinic-client/pkg/tokenstore"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	store, err := tokenstore.OpenSQLite(cfg.TokenDBPath, logger)
	if err != nil {
		log.Fatalf("open token store: %v", err)
	}
	client := apiclient.New(cfg.APIBaseURL, store,
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(logger),
	)
	mgr := session.NewManager(client, logger)
	defer mgr.Teardown()

	if len(os.Args) < 2 {
		usage()
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		login := fs.String("login", "", "username, email or phone")
		password := fs.String("password", "", "password")
		_ = fs.Parse(os.Args[2:])
		if *login == "" || *password == "" {
			log.Fatal("login and password are required")
		}
		user, err := mgr.Login(ctx, *login, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Printf("logged in as %s %s (%s)\n", user.FirstName, user.LastName, user.Role.Name)

	case "me":
		mustInit(ctx, mgr)
		snap := mgr.Current()
		if !snap.IsAuthenticated {
			log.Fatal("not logged in")
		}
		dump(snap.User)

	case "logout":
		if err := mgr.Logout(ctx); err != nil {
			logger.Warn("backend logout failed, local token cleared anyway", "error", err)
		}
		fmt.Println("logged out")

	case "doctors":
		mustInit(ctx, mgr)
		resp, err := services.NewDoctorService(client).List(ctx, services.ListParams{})
		if err != nil {
			log.Fatalf("list doctors: %v", err)
		}
		dump(resp.Data)

	case "appointments":
		mustInit(ctx, mgr)
		resp, err := services.NewAppointmentService(client).My(ctx, services.AppointmentFilters{})
		if err != nil {
			log.Fatalf("list appointments: %v", err)
		}
		dump(resp.Data)

	case "menu":
		mustInit(ctx, mgr)
		snap := mgr.Current()
		if !snap.IsAuthenticated {
			log.Fatal("not logged in")
		}
		dump(rbac.DefaultPolicy().MenuFor(snap.User.Role.Name))

	default:
		usage()
	}
}

func mustInit(ctx context.Context, mgr *session.Manager) {
	if err := mgr.Init(ctx); err != nil {
		log.Fatalf("resolve session: %v", err)
	}
}

func dump(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(out))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: clinicctl <login|me|logout|doctors|appointments|menu> [flags]")
	os.Exit(2)
}
