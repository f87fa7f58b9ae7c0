//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"experiences_portal/internal/domain"
	mysqlrepo "experiences_portal/internal/storage/mysql"
)

func pfloat(f float64) *float64 { return &f }
func pstr(s string) *string     { return &s }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=portal",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/portal?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOrderIndex_UpsertListAndStatusRefresh(t *testing.T) {
	db := startMySQL(t)
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	first := domain.OrderRef{
		ID:             "ord-100",
		Status:         domain.OrderPending,
		ExperienceName: "Old Town Walking Tour",
		TravelerName:   "Ana Pereira",
		TravelerEmail:  "ana@example.com",
		TotalAmount:    pfloat(42.50),
		Currency:       pstr("EUR"),
	}
	if err := repo.UpsertOrder(ctx, first); err != nil {
		t.Fatalf("UpsertOrder: %v", err)
	}
	if err := repo.UpsertOrder(ctx, domain.OrderRef{
		ID:            "ord-101",
		Status:        domain.OrderOnHold,
		TravelerName:  "Ben Ots",
		TravelerEmail: "ben@example.com",
	}); err != nil {
		t.Fatalf("UpsertOrder second: %v", err)
	}

	// A status refresh with no price data must keep the indexed amount.
	refreshed := first
	refreshed.Status = domain.OrderBooked
	refreshed.TotalAmount = nil
	refreshed.Currency = nil
	if err := repo.UpsertOrder(ctx, refreshed); err != nil {
		t.Fatalf("UpsertOrder refresh: %v", err)
	}

	refs, err := repo.ListOrders(ctx, 10)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(refs))
	}
	var got *domain.OrderRef
	for i := range refs {
		if refs[i].ID == "ord-100" {
			got = &refs[i]
		}
	}
	if got == nil {
		t.Fatal("ord-100 missing from listing")
	}
	if got.Status != domain.OrderBooked {
		t.Fatalf("status not refreshed: %s", got.Status)
	}
	if got.TotalAmount == nil || *got.TotalAmount != 42.50 || got.Currency == nil || *got.Currency != "EUR" {
		t.Fatalf("price data lost on refresh: %+v", got)
	}
	if got.ExperienceName != "Old Town Walking Tour" {
		t.Fatalf("experience name lost: %q", got.ExperienceName)
	}

	ids, err := repo.ListOrderIDs(ctx)
	if err != nil {
		t.Fatalf("ListOrderIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}
