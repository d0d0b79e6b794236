package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"golang.org/x/crypto/bcrypt"
)

var _testdb uint64 = 4

func init() {
	// Tests create plenty of users. Keep them fast.
	canaima.HashCost = bcrypt.MinCost
}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	// Get the current unique index.
	u := atomic.AddUint64(&_testdb, 1)

	var dbpath = filepath.Join(
		os.TempDir(),
		fmt.Sprintf("canaima-db-test-%d-%d", time.Now().UnixNano(), u),
	)

	// Remove the database before the testing.
	os.Remove(dbpath)
	// Remove the database and its WAL files after the testing.
	t.Cleanup(func() {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			os.Remove(dbpath + suffix)
		}
	})

	cfg := NewConfig()
	cfg.DatabasePath = dbpath

	// Start a fresh database.
	d, err := NewDatabase(cfg)
	if err != nil {
		t.Fatal("Failed to create a database:", err)
	}

	t.Cleanup(func() { d.Close() })

	return d
}

var testProfileN uint64

// testProfile returns a valid profile with a unique email and telephone.
func testProfile(name string) canaima.UserProfile {
	n := atomic.AddUint64(&testProfileN, 1)

	return canaima.UserProfile{
		Name:      name,
		FullName:  name + " Pérez",
		Telephone: fmt.Sprintf("+58 412-%07d", n),
		Address:   "Av. Bolívar, Ciudad Bolívar",
		Email:     fmt.Sprintf("%s%d@canaima.test", name, n),
	}
}

func testNewAdmin(t *testing.T, db *Database) canaima.UserPart {
	t.Helper()

	p := testProfile("admin")

	if err := db.createAdmin(p, "goodpassword"); err != nil {
		t.Fatal("Failed to make admin user:", err)
	}

	u, err := db.Signin(context.Background(), p.Email, "goodpassword")
	if err != nil {
		t.Fatal("Failed to sign in:", err)
	}

	return *u
}

func testNewCustomer(t *testing.T, db *Database, name string) canaima.UserPart {
	t.Helper()

	var u *canaima.UserPart

	err := db.Acquire(context.Background(), 0, func(tx *Transaction) (err error) {
		u, err = tx.Signup(testProfile(name), "12345678")
		return
	})
	if err != nil {
		t.Fatal("Failed to sign up:", err)
	}

	return *u
}

// testAcquire runs fn in a transaction that is committed right after.
func testAcquire(t *testing.T, db *Database, userID int64, fn func(tx *Transaction)) {
	t.Helper()

	err := db.Acquire(context.Background(), userID, func(tx *Transaction) error {
		fn(tx)
		return nil
	})
	if err != nil {
		t.Fatal("Failed to acquire transaction:", err)
	}
}

func TestDatabase(t *testing.T) {
	d := newTestDatabase(t)

	v, err := d.userVersion()
	if err != nil {
		t.Fatal("Failed to get user version:", err)
	}

	if v != len(migrations) {
		t.Fatalf("Unexpected user version %d, expected %d", v, len(migrations))
	}

	// Migrating again should be a no-op.
	if err := d.migrate(); err != nil {
		t.Fatal("Failed to re-migrate:", err)
	}
}

func TestAcquireRollback(t *testing.T) {
	d := newTestDatabase(t)
	a := testNewAdmin(t, d)

	var errFail = fmt.Errorf("fail")

	err := d.Acquire(context.Background(), a.ID, func(tx *Transaction) error {
		if _, err := tx.CreateIngredient(canaima.IngredientData{Name: "Azúcar"}); err != nil {
			t.Fatal("Failed to create ingredient:", err)
		}
		return errFail
	})
	if err != errFail {
		t.Fatal("Unexpected error:", err)
	}

	testAcquire(t, d, 0, func(tx *Transaction) {
		i, err := tx.Ingredients()
		if err != nil {
			t.Fatal("Failed to get ingredients:", err)
		}

		if len(i) != 0 {
			t.Fatal("Rolled back ingredient was saved:", i)
		}
	})
}
