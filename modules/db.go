package modules

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

var (
	dbConns        = map[int64]*sql.DB{}
	dbNextID int64 = 1
	dbMutex  sync.Mutex
)

func nextDbID() int64 {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	id := dbNextID
	dbNextID++
	return id
}

func dbByHandle(id int64) (*sql.DB, bool) {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	db, ok := dbConns[id]
	return db, ok
}

// DB exposes database/sql over handles. A sqlite DSN is file access and is
// gated as fs.write on the path; network drivers are gated as net.http on
// the DSN.
func DB() Module {
	return Module{
		"open":  native("open", dbOpen),
		"query": native("query", dbQuery),
		"exec":  native("exec", dbExec),
		"close": native("close", dbClose),
	}
}

func dbOpen(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("open", args, 2, 2); err != nil {
		return nil, err
	}
	driver, err := unpackString("open", "driver", args[0])
	if err != nil {
		return nil, err
	}
	dsn, err := unpackString("open", "dsn", args[1])
	if err != nil {
		return nil, err
	}

	switch driver {
	case "sqlite3":
		if perr := perm.CheckFsWrite(ctx, dsn); perr != nil {
			return nil, perr
		}
	case "mysql", "postgres":
		if perr := perm.CheckHTTP(ctx, dsn); perr != nil {
			return nil, perr
		}
	default:
		return nil, value.Errorf(value.ValueError,
			"open(): unsupported driver %q (sqlite3, mysql, postgres)", driver)
	}

	db, oerr := sql.Open(driver, dsn)
	if oerr != nil {
		return nil, value.Errorf(value.IOError, "open() failed: %s", oerr)
	}
	if perr := db.PingContext(ctx); perr != nil {
		db.Close()
		if ctx.Err() != nil {
			return nil, value.Errorf(value.Cancelled, "open cancelled")
		}
		return nil, value.Errorf(value.IOError, "open() failed: %s", perr)
	}

	id := nextDbID()
	dbMutex.Lock()
	dbConns[id] = db
	dbMutex.Unlock()
	return &value.Int{Value: id}, nil
}

func dbQuery(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, value.Errorf(value.ArgumentError, "query() expects a handle and a statement")
	}
	id, err := unpackInt("query", "handle", args[0])
	if err != nil {
		return nil, err
	}
	query, err := unpackString("query", "statement", args[1])
	if err != nil {
		return nil, err
	}
	db, ok := dbByHandle(id)
	if !ok {
		return nil, value.Errorf(value.ValueError, "query(): unknown database handle %d", id)
	}

	params := sqlParams(args[2:])
	rows, qerr := db.QueryContext(ctx, query, params...)
	if qerr != nil {
		return nil, value.Errorf(value.IOError, "query() failed: %s", qerr)
	}
	defer rows.Close()

	columns, cerr := rows.Columns()
	if cerr != nil {
		return nil, value.Errorf(value.IOError, "query() failed: %s", cerr)
	}

	out := []value.Value{}
	for rows.Next() {
		cells := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if serr := rows.Scan(ptrs...); serr != nil {
			return nil, value.Errorf(value.IOError, "query() failed: %s", serr)
		}
		row := value.NewDict()
		for i, col := range columns {
			row.Set(&value.String{Value: col}, sqlCell(cells[i]))
		}
		out = append(out, row)
	}
	if rerr := rows.Err(); rerr != nil {
		return nil, value.Errorf(value.IOError, "query() failed: %s", rerr)
	}
	return value.NewList(out), nil
}

func dbExec(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, value.Errorf(value.ArgumentError, "exec() expects a handle and a statement")
	}
	id, err := unpackInt("exec", "handle", args[0])
	if err != nil {
		return nil, err
	}
	stmt, err := unpackString("exec", "statement", args[1])
	if err != nil {
		return nil, err
	}
	db, ok := dbByHandle(id)
	if !ok {
		return nil, value.Errorf(value.ValueError, "exec(): unknown database handle %d", id)
	}

	result, xerr := db.ExecContext(ctx, stmt, sqlParams(args[2:])...)
	if xerr != nil {
		return nil, value.Errorf(value.IOError, "exec() failed: %s", xerr)
	}
	affected, _ := result.RowsAffected()
	return &value.Int{Value: affected}, nil
}

func dbClose(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("close", args, 1, 1); err != nil {
		return nil, err
	}
	id, err := unpackInt("close", "handle", args[0])
	if err != nil {
		return nil, err
	}
	dbMutex.Lock()
	db, ok := dbConns[id]
	delete(dbConns, id)
	dbMutex.Unlock()
	if !ok {
		return nil, value.Errorf(value.ValueError, "close(): unknown database handle %d", id)
	}
	db.Close()
	return value.NONE, nil
}

func sqlParams(args []value.Value) []interface{} {
	params := make([]interface{}, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case *value.Int:
			params[i] = a.Value
		case *value.Float:
			params[i] = a.Value
		case *value.String:
			params[i] = a.Value
		case *value.Bool:
			params[i] = a.Value
		case *value.None:
			params[i] = nil
		default:
			params[i] = a.Inspect()
		}
	}
	return params
}

func sqlCell(cell interface{}) value.Value {
	switch cell := cell.(type) {
	case nil:
		return value.NONE
	case int64:
		return &value.Int{Value: cell}
	case float64:
		return &value.Float{Value: cell}
	case bool:
		return value.NativeBool(cell)
	case []byte:
		return &value.String{Value: string(cell)}
	case string:
		return &value.String{Value: cell}
	default:
		return &value.String{Value: strings.TrimSpace(sqlString(cell))}
	}
}

func sqlString(cell interface{}) string {
	if s, ok := cell.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
