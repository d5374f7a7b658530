package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"counselor/internal/models"
	"counselor/internal/pagination"
	"counselor/internal/testutil"
)

func TestNonCanonicalIDs(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	h := testutil.CreateTestHolding(t, db)
	advisors := NewAdvisorService(db)
	clients := NewClientService(db)
	portfolios := NewPortfolioService(db)
	securities := NewSecurityService(db)
	types := NewSecurityTypeService(db)

	t.Run("get_advisor_upper_case", func(t *testing.T) {
		advisor, err := advisors.GetAdvisorByID(ctx, strings.ToUpper(h.Advisor.ID))
		testutil.AssertNoError(t, err)
		if advisor.ID != h.Advisor.ID {
			t.Errorf("expected advisor %s, got %s", h.Advisor.ID, advisor.ID)
		}
	})

	t.Run("get_advisor_urn", func(t *testing.T) {
		_, err := advisors.GetAdvisorByID(ctx, "urn:uuid:"+h.Advisor.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("get_security_type_braced", func(t *testing.T) {
		st, err := types.GetSecurityTypeByID(ctx, "{"+h.Type.ID+"}")
		testutil.AssertNoError(t, err)
		if st.Name != h.Type.Name {
			t.Errorf("expected %q, got %q", h.Type.Name, st.Name)
		}
	})

	t.Run("get_client_upper_case", func(t *testing.T) {
		client, err := clients.GetClientByID(ctx, strings.ToUpper(h.Client.ID))
		testutil.AssertNoError(t, err)
		if client.Advisor == nil || client.Advisor.ID != h.Advisor.ID {
			t.Error("expected the advisor to be loaded")
		}
	})

	t.Run("portfolio_by_client_upper_case", func(t *testing.T) {
		portfolio, err := portfolios.GetPortfolioByClientID(ctx, strings.ToUpper(h.Client.ID))
		testutil.AssertNoError(t, err)
		if portfolio.ID != h.Portfolio.ID {
			t.Errorf("expected portfolio %s, got %s", h.Portfolio.ID, portfolio.ID)
		}
	})

	t.Run("list_securities_upper_case", func(t *testing.T) {
		list, err := securities.ListPortfolioSecurities(ctx, strings.ToUpper(h.Portfolio.ID))
		testutil.AssertNoError(t, err)
		if len(list) != 1 {
			t.Fatalf("expected 1 security, got %d", len(list))
		}
	})

	t.Run("add_security_stores_canonical_references", func(t *testing.T) {
		sec, err := securities.AddSecurity(ctx,
			strings.ToUpper(h.Portfolio.ID),
			strings.ToUpper(h.Type.ID),
			"MSFT", decimal.NewFromInt(300), 2, models.CalendarDate(2024, time.June, 1))
		testutil.AssertNoError(t, err)
		if sec.PortfolioID != h.Portfolio.ID || sec.TypeID != h.Type.ID {
			t.Errorf("expected canonical references, got portfolio %s type %s", sec.PortfolioID, sec.TypeID)
		}
	})

	t.Run("create_client_stores_canonical_advisor", func(t *testing.T) {
		client, err := clients.CreateClient(ctx, strings.ToUpper(h.Advisor.ID), "Alan", "Turing", "alan@x.com", nil)
		testutil.AssertNoError(t, err)
		if client.AdvisorID != h.Advisor.ID {
			t.Errorf("expected advisor %s, got %s", h.Advisor.ID, client.AdvisorID)
		}

		page, err := clients.ListClientsByAdvisor(ctx, strings.ToUpper(h.Advisor.ID), pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 clients, got %d", page.TotalItems)
		}
	})

	t.Run("reassign_to_same_advisor", func(t *testing.T) {
		_, err := clients.ReassignClient(ctx, strings.ToUpper(h.Client.ID), strings.ToUpper(h.Advisor.ID))
		testutil.AssertAppError(t, err, "SAME_ADVISOR")
	})

	t.Run("reassign_type_to_itself", func(t *testing.T) {
		_, err := types.ReassignSecurityType(ctx, h.Type.ID, strings.ToUpper(h.Type.ID))
		testutil.AssertAppError(t, err, "SAME_SECURITY_TYPE")
	})

	t.Run("delete_client_upper_case", func(t *testing.T) {
		result, err := clients.DeleteClient(ctx, strings.ToUpper(h.Client.ID))
		testutil.AssertNoError(t, err)
		if !result.PortfolioDeleted || result.SecuritiesDeleted != 2 {
			t.Errorf("expected portfolio and 2 securities deleted, got %+v", result)
		}
		testutil.AssertCount(t, db, "securities", 0)
	})
}
