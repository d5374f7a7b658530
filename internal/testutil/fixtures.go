package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"counselor/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAdvisor creates an advisor with a unique email.
func CreateTestAdvisor(t *testing.T, db *gorm.DB) *models.Advisor {
	t.Helper()
	return CreateTestAdvisorWithEmail(t, db, fmt.Sprintf("advisor%d@test.com", nextID()))
}

// CreateTestAdvisorWithEmail creates an advisor with the given email.
func CreateTestAdvisorWithEmail(t *testing.T, db *gorm.DB, email string) *models.Advisor {
	t.Helper()

	advisor := models.NewAdvisor("Test", fmt.Sprintf("Advisor %d", nextID()), email, nil)
	if err := db.Create(advisor).Error; err != nil {
		t.Fatalf("failed to create test advisor: %v", err)
	}
	return advisor
}

// CreateTestClient creates a client of the given advisor with a unique email.
func CreateTestClient(t *testing.T, db *gorm.DB, advisorID string) *models.Client {
	t.Helper()

	n := nextID()
	client := models.NewClient(advisorID, "Test", fmt.Sprintf("Client %d", n), fmt.Sprintf("client%d@test.com", n), nil)
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}

// CreateTestPortfolio creates an empty portfolio for the given client.
func CreateTestPortfolio(t *testing.T, db *gorm.DB, clientID string) *models.Portfolio {
	t.Helper()

	portfolio := models.NewPortfolio(clientID)
	if err := db.Create(portfolio).Error; err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return portfolio
}

// CreateTestSecurityType creates a security type with a unique name.
func CreateTestSecurityType(t *testing.T, db *gorm.DB) *models.SecurityType {
	t.Helper()

	st := models.NewSecurityType(fmt.Sprintf("Test Type %d", nextID()), nil)
	if err := db.Create(st).Error; err != nil {
		t.Fatalf("failed to create test security type: %v", err)
	}
	return st
}

// CreateTestSecurity creates a holding of 10 units at 100.00 bought on
// 2024-01-01.
func CreateTestSecurity(t *testing.T, db *gorm.DB, portfolioID, typeID string) *models.Security {
	t.Helper()

	sec := models.NewSecurity(
		portfolioID,
		typeID,
		fmt.Sprintf("TST%d", nextID()),
		decimal.NewFromInt(100),
		10,
		models.CalendarDate(2024, time.January, 1),
	)
	if err := db.Create(sec).Error; err != nil {
		t.Fatalf("failed to create test security: %v", err)
	}
	return sec
}

// Holding bundles a full ownership chain for tests that need every entity.
type Holding struct {
	Advisor   *models.Advisor
	Client    *models.Client
	Portfolio *models.Portfolio
	Type      *models.SecurityType
	Security  *models.Security
}

// CreateTestHolding creates advisor, client, portfolio, type and one security.
func CreateTestHolding(t *testing.T, db *gorm.DB) Holding {
	t.Helper()

	advisor := CreateTestAdvisor(t, db)
	client := CreateTestClient(t, db, advisor.ID)
	portfolio := CreateTestPortfolio(t, db, client.ID)
	st := CreateTestSecurityType(t, db)
	return Holding{
		Advisor:   advisor,
		Client:    client,
		Portfolio: portfolio,
		Type:      st,
		Security:  CreateTestSecurity(t, db, portfolio.ID, st.ID),
	}
}
