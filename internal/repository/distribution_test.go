package repository

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// recordingDB 记录最近一次执行的查询与参数，总是返回错误以终止调用方
type recordingDB struct {
	query string
	args  []interface{}
}

var errRecorded = errors.New("recorded")

func (db *recordingDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	db.query, db.args = query, args
	return nil, errRecorded
}

func (db *recordingDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	db.query, db.args = query, args
	return nil, errRecorded
}

func (db *recordingDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	db.query, db.args = query, args
	return &sql.Row{}
}

func TestDistributionListByZone_AppliesFilters(t *testing.T) {
	db := &recordingDB{}
	repo := NewDistributionRepository(db)
	zoneID := uuid.New()

	filter := DefaultListFilter().
		WithDayType("holiday").
		WithDateRange("2026-09-01", "2026-09-30")

	_, err := repo.ListByZone(context.Background(), zoneID, filter)
	if err == nil {
		t.Fatal("recording db should abort the query")
	}

	for _, predicate := range []string{
		"day_type = $2",
		"plan_date >= $3",
		"plan_date <= $4",
		"LIMIT $5 OFFSET $6",
	} {
		if !strings.Contains(db.query, predicate) {
			t.Errorf("query missing predicate %q:\n%s", predicate, db.query)
		}
	}

	want := []interface{}{zoneID, "holiday", "2026-09-01", "2026-09-30", 20, 0}
	if !reflect.DeepEqual(db.args, want) {
		t.Errorf("args = %v, want %v", db.args, want)
	}
}

func TestDistributionListByZone_PartialFilters(t *testing.T) {
	db := &recordingDB{}
	repo := NewDistributionRepository(db)
	zoneID := uuid.New()

	filter := DefaultListFilter().WithDateRange("", "2026-09-30")

	if _, err := repo.ListByZone(context.Background(), zoneID, filter); err == nil {
		t.Fatal("recording db should abort the query")
	}

	if strings.Contains(db.query, "day_type =") {
		t.Errorf("unexpected day_type predicate:\n%s", db.query)
	}
	if strings.Contains(db.query, "plan_date >=") {
		t.Errorf("unexpected start-date predicate:\n%s", db.query)
	}
	if !strings.Contains(db.query, "plan_date <= $2") {
		t.Errorf("missing end-date predicate:\n%s", db.query)
	}
	if !strings.Contains(db.query, "LIMIT $3 OFFSET $4") {
		t.Errorf("pagination placeholders misnumbered:\n%s", db.query)
	}
}

func TestDistributionListByZone_NoFilters(t *testing.T) {
	db := &recordingDB{}
	repo := NewDistributionRepository(db)

	if _, err := repo.ListByZone(context.Background(), uuid.New(), DefaultListFilter()); err == nil {
		t.Fatal("recording db should abort the query")
	}

	if strings.Contains(db.query, "day_type =") || strings.Contains(db.query, "plan_date >") || strings.Contains(db.query, "plan_date <") {
		t.Errorf("unfiltered listing should bind only zone and pagination:\n%s", db.query)
	}
	if !strings.Contains(db.query, "LIMIT $2 OFFSET $3") {
		t.Errorf("pagination placeholders misnumbered:\n%s", db.query)
	}
}
