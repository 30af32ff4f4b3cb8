package sink

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"alumnos", `"alumnos"`, false},
		{"public.alumnos", `"public"."alumnos"`, false},
		{`we"ird`, `"we""ird"`, false},
		{"", "", true},
		{"a..b", "", true},
		{"a.b.c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIdentifier(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseIdentifier(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIdentifier(%q): %v", tt.input, err)
			}
			if got.Sanitize() != tt.want {
				t.Errorf("Sanitize() = %s, want %s", got.Sanitize(), tt.want)
			}
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL(pgx.Identifier{"clean"}, []string{"RUT", "Región"})
	want := `CREATE TABLE IF NOT EXISTS "clean" ("RUT" text, "Región" text)`
	if got != want {
		t.Errorf("CreateTableSQL = %s, want %s", got, want)
	}
}

func TestCopyTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	fields := []string{"RUT", "Nombre"}
	rows := []core.Row{
		{"RUT": "1-9", "Nombre": "Ana"},
		{"RUT": "2-7", "Nombre": nil},
	}

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "clean"`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE "clean"`)).
		WillReturnResult(pgxmock.NewResult("TRUNCATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"clean"}, fields).WillReturnResult(2)

	n, err := CopyTable(context.Background(), mock, "clean", fields, rows, Options{Truncate: true})
	if err != nil {
		t.Fatalf("CopyTable: %v", err)
	}
	if n != 2 {
		t.Errorf("copied %d rows, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCopyTable_Errors(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		_, err := CopyTable(context.Background(), nil, "clean", nil, nil, Options{})
		if !errors.Is(err, ErrNoColumns) {
			t.Errorf("CopyTable = %v, want ErrNoColumns", err)
		}
	})

	t.Run("create fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatal(err)
		}
		defer mock.Close()

		mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

		_, err = CopyTable(context.Background(), mock, "clean", []string{"RUT"}, nil, Options{})
		if err == nil || !strings.Contains(err.Error(), "create table") {
			t.Errorf("CopyTable = %v, want create table error", err)
		}
	})

	t.Run("copy fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatal(err)
		}
		defer mock.Close()

		mock.ExpectExec("CREATE TABLE").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		mock.ExpectCopyFrom(pgx.Identifier{"clean"}, []string{"RUT"}).WillReturnError(errors.New("connection refused"))

		_, err = CopyTable(context.Background(), mock, "clean", []string{"RUT"}, []core.Row{{"RUT": "1-9"}}, Options{})
		if err == nil || !strings.Contains(err.Error(), "copy into") {
			t.Fatalf("CopyTable = %v, want copy error", err)
		}
		if got := core.MapError(err).Code; got != "DB004" {
			t.Errorf("code = %q, want %q", got, "DB004")
		}
	})
}
