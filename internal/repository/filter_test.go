package repository_test

import (
	"strings"
	"testing"
	"time"

	"precast-erp/internal/model"
	"precast-erp/internal/repository"
	"precast-erp/internal/testutil"

	"gorm.io/gorm"
)

func TestFilterScope(t *testing.T) {
	db := testutil.NewTestDB(t)
	dry := db.Session(&gorm.Session{DryRun: true})

	tests := []struct {
		name     string
		filter   *repository.Filter
		contains []string
		vars     int
	}{
		{
			name:   "nil filter adds nothing",
			filter: nil,
			vars:   0,
		},
		{
			name:     "equality",
			filter:   repository.NewFilter().Eq(repository.ColOrderStatus, model.OrderDraft),
			contains: []string{"`orders`.`status` = ?"},
			vars:     1,
		},
		{
			name: "range and substring",
			filter: repository.NewFilter().
				Gte(repository.ColOrderDate, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).
				Lte(repository.ColOrderDate, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)).
				Contains(repository.ColOrderNumber, "CMD-2026"),
			contains: []string{
				"`orders`.`order_date` >= ?",
				"`orders`.`order_date` <= ?",
				"LOWER(`orders`.`order_number`) LIKE ?",
			},
			vars: 3,
		},
		{
			name:     "membership",
			filter:   repository.NewFilter().In(repository.ColOrderStatus, model.OrderDraft, model.OrderConfirmed),
			contains: []string{"`orders`.`status` IN (?,?)"},
			vars:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orders []model.Order
			stmt := dry.Model(&model.Order{}).Scopes(tt.filter.Scope).Find(&orders).Statement
			sql := stmt.SQL.String()
			for _, want := range tt.contains {
				if !strings.Contains(sql, want) {
					t.Errorf("SQL %q does not contain %q", sql, want)
				}
			}
			if tt.vars == 0 && strings.Contains(sql, "WHERE") {
				t.Errorf("SQL %q should have no WHERE", sql)
			}
			if len(stmt.Vars) != tt.vars {
				t.Errorf("got %d vars, want %d", len(stmt.Vars), tt.vars)
			}
		})
	}
}

func TestFilterContainsIsCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateClient(t, db, "Batiment Dakar SARL")
	testutil.CreateClient(t, db, "Ciments du Sahel")

	repo := repository.NewClientRepository(db)
	clients, total, err := repo.List(t.Context(), repository.NewFilter().Contains(repository.ColClientName, "dakar"), 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(clients) != 1 || clients[0].CompanyName != "Batiment Dakar SARL" {
		t.Errorf("List() = %v (total %d), want only the Dakar client", clients, total)
	}
}
