package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mattn/go-sqlite3"
	_ "github.com/mattn/go-sqlite3"
)

var migrations = []string{`
	CREATE TABLE users (
		id           INTEGER PRIMARY KEY, -- Snowflake
		name         TEXT    NOT NULL,
		fullname     TEXT    NOT NULL,
		telephone    TEXT    NOT NULL UNIQUE,
		address      TEXT    NOT NULL,
		email        TEXT    NOT NULL UNIQUE,
		passhash     BLOB    NOT NULL, -- bcrypt
		permission   INTEGER NOT NULL, -- Permission enum
		registration INTEGER NOT NULL, -- unixnano
		active       BOOLEAN NOT NULL DEFAULT 1
	);

	CREATE TABLE products (
		id          INTEGER PRIMARY KEY, -- Snowflake
		name        TEXT    NOT NULL,
		description TEXT    NOT NULL,
		price       REAL    NOT NULL
	);

	CREATE TABLE ingredients (
		id   INTEGER PRIMARY KEY, -- Snowflake
		name TEXT    NOT NULL
	);

	CREATE TABLE productingredients (
		productid    INTEGER NOT NULL REFERENCES products(id)    ON DELETE CASCADE,
		ingredientid INTEGER NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
		quantity     TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (productid, ingredientid)
	);

	CREATE TABLE orders (
		id       INTEGER PRIMARY KEY, -- Snowflake
		customer INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL,
		date     TEXT    NOT NULL, -- 2006-01-02
		total    REAL    NOT NULL
	);

	CREATE TABLE orderitems (
		orderid   INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		productid INTEGER REFERENCES products(id) ON DELETE SET NULL,
		quantity  INTEGER NOT NULL,
		unitprice REAL    NOT NULL
	);

	CREATE TABLE favorites (
		id        INTEGER PRIMARY KEY, -- Snowflake
		userid    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		productid INTEGER REFERENCES products(id) ON DELETE CASCADE,
		orderid   INTEGER REFERENCES orders(id)   ON DELETE CASCADE,
		UNIQUE (userid, productid, orderid)
	);
`}

type DBConfig struct {
	DatabasePath string `toml:"databasePath"`
}

func NewConfig() DBConfig {
	return DBConfig{
		DatabasePath: "canaima.db",
	}
}

func (c *DBConfig) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("missing `databasePath' value")
	}

	return nil
}

type Database struct {
	*sqlx.DB
	Config DBConfig
}

func NewDatabase(config DBConfig) (*Database, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Foreign keys are per connection, so they're enabled through the DSN
	// instead of a one-off pragma. WAL lets page renders read while the API
	// writes.
	d, err := sqlx.Open("sqlite3", "file:"+config.DatabasePath+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open sqlite3 db")
	}

	db := &Database{d, config}

	if err := db.migrate(); err != nil {
		d.Close()
		return nil, err
	}

	return db, nil
}

func (d *Database) migrate() error {
	v, err := d.userVersion()
	if err != nil {
		return errors.Wrap(err, "Failed to get user_version pragma")
	}

	// If we're already up-to-date with all the migrations, then we're done.
	if v >= len(migrations) {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "Failed to start a transaction for migrations")
	}
	// Rollback in the end even if we've failed, just in case.
	defer tx.Rollback()

	// Pick up from the changes in the migrations slice.
	for i := v; i < len(migrations); i++ {
		_, err := tx.Exec(migrations[i])
		if err != nil {
			return errors.Wrapf(err, "Failed to migrate at step %d", i)
		}
	}

	if err := setUserVersion(tx, len(migrations)); err != nil {
		return errors.Wrap(err, "Failed to save user_version pragma")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "Failed to save migration changes")
	}

	return nil
}

// CreateAdmin initializes the database once then creates an admin account.
func CreateAdmin(config DBConfig, profile canaima.UserProfile, password string) error {
	d, err := NewDatabase(config)
	if err != nil {
		return errors.Wrap(err, "Failed to initialize database")
	}
	defer d.Close()

	return d.createAdmin(profile, password)
}

func (d *Database) createAdmin(profile canaima.UserProfile, password string) error {
	return d.Acquire(context.Background(), 0, func(tx *Transaction) error {
		_, err := tx.createUser(profile, password, canaima.PermissionAdmin)
		return err
	})
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) userVersion() (int, error) {
	var version int
	return version, d.QueryRow("PRAGMA user_version").Scan(&version)
}

func setUserVersion(tx *sql.Tx, v int) error {
	_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v))
	return err
}

// Transaction is a database transaction bound to the user that made the
// request. A guest transaction has a zero User.
type Transaction struct {
	*sqlx.Tx
	ctx context.Context

	User   canaima.UserPart
	config DBConfig
}

type TxHandler = func(*Transaction) error

func (d *Database) begin(ctx context.Context, userID int64) (*Transaction, error) {
	t, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		Tx:     t,
		ctx:    ctx,
		config: d.Config,
	}

	if userID == 0 {
		return tx, nil
	}

	u, err := tx.user(userID)
	if err != nil {
		t.Rollback()

		// A token for a deleted account is as good as no token.
		if errors.Is(err, canaima.ErrUserNotFound) {
			return nil, canaima.ErrUnauthorized
		}

		return nil, err
	}

	if !u.IsActive {
		t.Rollback()
		return nil, canaima.ErrUserInactive
	}

	tx.User = *u
	return tx, nil
}

// Acquire runs fn inside a transaction on behalf of the user with the given
// ID. A zero ID acquires a guest transaction. The transaction is committed only
// if fn returns no error.
func (d *Database) Acquire(ctx context.Context, userID int64, fn TxHandler) error {
	t, err := d.begin(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "Failed to begin transaction")
	}
	defer t.Rollback()

	if err := fn(t); err != nil {
		return err
	}

	return t.Commit()
}

// Catalog returns every product with its ingredients. It is the read path the
// front server uses for its store.
func (d *Database) Catalog(ctx context.Context) (products []canaima.Product, err error) {
	err = d.Acquire(ctx, 0, func(tx *Transaction) error {
		products, err = tx.Products()
		return err
	})
	return
}

// HasPermission returns nil if the current user has at least the given
// permission.
func (d *Transaction) HasPermission(p canaima.Permission) error {
	if d.User.IsZero() {
		return canaima.ErrUnauthorized
	}
	if d.User.Permission < p {
		return canaima.ErrActionNotPermitted
	}
	return nil
}

// IsUserOrHasPermission returns nil if the current user is the user with the
// given ID or has at least the given permission.
func (d *Transaction) IsUserOrHasPermission(userID int64, p canaima.Permission) error {
	if d.User.IsZero() {
		return canaima.ErrUnauthorized
	}
	if d.User.ID == userID {
		return nil
	}
	return d.HasPermission(p)
}

func errIsConstraint(err error) bool {
	if err != nil {
		sqlerr := sqlite3.Error{}

		// Unique constraint means we're attempting to insert a colliding row.
		if errors.As(err, &sqlerr) && sqlerr.Code == sqlite3.ErrConstraint {
			return true
		}
	}

	return false
}

// execChanged returns false if no rows were affected.
func (d *Transaction) execChanged(exec string, v ...interface{}) (bool, error) {
	r, err := d.ExecContext(d.ctx, exec, v...)
	if err != nil {
		return false, err
	}

	count, err := r.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "Failed to get rows affected")
	}

	return count > 0, nil
}
