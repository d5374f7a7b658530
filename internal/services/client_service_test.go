package services

import (
	"context"
	"testing"
	"time"

	"counselor/internal/errors"
	"counselor/internal/pagination"
	"counselor/internal/testutil"
)

func TestCreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)

		client, err := svc.CreateClient(ctx, advisor.ID, "Grace", "Hopper", "Grace@X.com", nil)
		testutil.AssertNoError(t, err)

		if client.ID == "" {
			t.Fatal("expected an assigned client ID")
		}
		if client.AdvisorID != advisor.ID {
			t.Errorf("expected advisor %s, got %s", advisor.ID, client.AdvisorID)
		}
		if client.Email != "grace@x.com" {
			t.Errorf("expected normalized email, got %s", client.Email)
		}
		if client.UpdatedAt == nil || !client.UpdatedAt.Equal(client.CreatedAt) {
			t.Errorf("expected updated_at equal to created_at, got %v", client.UpdatedAt)
		}
	})

	t.Run("without_advisor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)

		_, err := svc.CreateClient(ctx, "", "Grace", "Hopper", "grace@x.com", nil)
		testutil.AssertAppError(t, err, "REQUIRED_FIELD")
		if !errors.IsConstraintViolation(err) {
			t.Errorf("expected a constraint violation, got %v", err)
		}
		testutil.AssertCount(t, db, "clients", 0)
	})

	t.Run("unknown_advisor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)

		_, err := svc.CreateClient(ctx, "00000000-0000-7000-8000-000000000000", "Grace", "Hopper", "grace@x.com", nil)
		testutil.AssertAppError(t, err, "ADVISOR_NOT_FOUND")
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)
		other := testutil.CreateTestAdvisor(t, db)

		_, err := svc.CreateClient(ctx, advisor.ID, "Grace", "Hopper", "c@x.com", nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateClient(ctx, other.ID, "Greta", "Hopper", "c@x.com", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CLIENT_EMAIL")
	})

	t.Run("email_shared_with_advisor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisorWithEmail(t, db, "same@x.com")

		_, err := svc.CreateClient(ctx, advisor.ID, "Self", "Managed", "same@x.com", nil)
		testutil.AssertNoError(t, err)
	})
}

func TestGetClient(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewClientService(db)
	advisor := testutil.CreateTestAdvisor(t, db)
	client := testutil.CreateTestClient(t, db, advisor.ID)

	t.Run("by_id_preloads_advisor", func(t *testing.T) {
		got, err := svc.GetClientByID(ctx, client.ID)
		testutil.AssertNoError(t, err)
		if got.Advisor == nil || got.Advisor.ID != advisor.ID {
			t.Fatalf("expected advisor %s to be loaded, got %+v", advisor.ID, got.Advisor)
		}
	})

	t.Run("by_email", func(t *testing.T) {
		got, err := svc.GetClientByEmail(ctx, client.Email)
		testutil.AssertNoError(t, err)
		if got.ID != client.ID {
			t.Errorf("expected client %s, got %s", client.ID, got.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetClientByID(ctx, "missing")
		testutil.AssertAppError(t, err, "CLIENT_NOT_FOUND")
	})
}

func TestListClientsByAdvisor(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewClientService(db)

	advisor := testutil.CreateTestAdvisor(t, db)
	other := testutil.CreateTestAdvisor(t, db)
	_, err := svc.CreateClient(ctx, advisor.ID, "Zed", "Adams", "zed@x.com", nil)
	testutil.AssertNoError(t, err)
	_, err = svc.CreateClient(ctx, advisor.ID, "Amy", "Adams", "amy@x.com", nil)
	testutil.AssertNoError(t, err)
	testutil.CreateTestClient(t, db, other.ID)

	t.Run("only_own_clients", func(t *testing.T) {
		page, err := svc.ListClientsByAdvisor(ctx, advisor.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 clients, got %d", page.TotalItems)
		}
		if page.Items[0].FirstName != "Amy" || page.Items[1].FirstName != "Zed" {
			t.Errorf("expected Amy then Zed, got %s then %s", page.Items[0].FirstName, page.Items[1].FirstName)
		}
	})

	t.Run("advisor_without_clients", func(t *testing.T) {
		lonely := testutil.CreateTestAdvisor(t, db)
		page, err := svc.ListClientsByAdvisor(ctx, lonely.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Items) != 0 {
			t.Errorf("expected no clients, got %d", len(page.Items))
		}
	})

	t.Run("unknown_advisor", func(t *testing.T) {
		_, err := svc.ListClientsByAdvisor(ctx, "missing", pagination.PageRequest{})
		testutil.AssertAppError(t, err, "ADVISOR_NOT_FOUND")
	})
}

func TestUpdateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes_updated_at", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)
		client := testutil.CreateTestClient(t, db, advisor.ID)

		time.Sleep(2 * time.Millisecond)
		updated, err := svc.UpdateClient(ctx, client.ID, ClientUpdate{LastName: strPtr("Hopper")})
		testutil.AssertNoError(t, err)
		if updated.LastName != "Hopper" {
			t.Errorf("expected last name Hopper, got %s", updated.LastName)
		}
		if updated.UpdatedAt == nil || !updated.UpdatedAt.After(client.CreatedAt) {
			t.Errorf("expected updated_at after created_at, got %v", updated.UpdatedAt)
		}
		if updated.Advisor == nil || updated.Advisor.ID != client.AdvisorID {
			t.Errorf("expected advisor %s to be loaded, got %v", client.AdvisorID, updated.Advisor)
		}

		got, err := svc.GetClientByID(ctx, client.ID)
		testutil.AssertNoError(t, err)
		if got.LastName != "Hopper" {
			t.Errorf("expected stored last name Hopper, got %s", got.LastName)
		}
		if !got.CreatedAt.Equal(client.CreatedAt) {
			t.Errorf("expected created_at unchanged, got %v", got.CreatedAt)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)
		first := testutil.CreateTestClient(t, db, advisor.ID)
		second := testutil.CreateTestClient(t, db, advisor.ID)

		_, err := svc.UpdateClient(ctx, second.ID, ClientUpdate{Email: strPtr(first.Email)})
		testutil.AssertAppError(t, err, "DUPLICATE_CLIENT_EMAIL")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)

		_, err := svc.UpdateClient(ctx, "missing", ClientUpdate{FirstName: strPtr("X")})
		testutil.AssertAppError(t, err, "CLIENT_NOT_FOUND")
	})
}

func TestReassignClient(t *testing.T) {
	ctx := context.Background()

	t.Run("moves_client", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		from := testutil.CreateTestAdvisor(t, db)
		to := testutil.CreateTestAdvisor(t, db)
		client := testutil.CreateTestClient(t, db, from.ID)

		moved, err := svc.ReassignClient(ctx, client.ID, to.ID)
		testutil.AssertNoError(t, err)
		if moved.AdvisorID != to.ID {
			t.Errorf("expected advisor %s, got %s", to.ID, moved.AdvisorID)
		}
		if moved.Advisor == nil || moved.Advisor.ID != to.ID {
			t.Errorf("expected new advisor to be loaded, got %v", moved.Advisor)
		}

		page, err := svc.ListClientsByAdvisor(ctx, from.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected old advisor to have no clients, got %d", page.TotalItems)
		}
	})

	t.Run("same_advisor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)
		client := testutil.CreateTestClient(t, db, advisor.ID)

		_, err := svc.ReassignClient(ctx, client.ID, advisor.ID)
		testutil.AssertAppError(t, err, "SAME_ADVISOR")
	})

	t.Run("unknown_advisor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)
		client := testutil.CreateTestClient(t, db, advisor.ID)

		_, err := svc.ReassignClient(ctx, client.ID, "missing")
		testutil.AssertAppError(t, err, "ADVISOR_NOT_FOUND")
	})
}

func TestDeleteClient(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades_to_portfolio_and_securities", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)

		h := testutil.CreateTestHolding(t, db)
		testutil.CreateTestSecurity(t, db, h.Portfolio.ID, h.Type.ID)

		// A second, unrelated holding must survive.
		other := testutil.CreateTestHolding(t, db)

		result, err := svc.DeleteClient(ctx, h.Client.ID)
		testutil.AssertNoError(t, err)
		if !result.PortfolioDeleted {
			t.Error("expected the portfolio to be deleted")
		}
		if result.SecuritiesDeleted != 2 {
			t.Errorf("expected 2 securities deleted, got %d", result.SecuritiesDeleted)
		}

		testutil.AssertCount(t, db, "clients", 1)
		testutil.AssertCount(t, db, "portfolios", 1)
		testutil.AssertCount(t, db, "securities", 1)
		testutil.AssertCount(t, db, "advisors", 2)
		testutil.AssertCount(t, db, "security_types", 2)

		_, err = NewPortfolioService(db).GetPortfolioByID(ctx, other.Portfolio.ID)
		testutil.AssertNoError(t, err)
		_, err = NewAdvisorService(db).GetAdvisorByID(ctx, h.Advisor.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("client_without_portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)
		advisor := testutil.CreateTestAdvisor(t, db)
		client := testutil.CreateTestClient(t, db, advisor.ID)

		result, err := svc.DeleteClient(ctx, client.ID)
		testutil.AssertNoError(t, err)
		if result.PortfolioDeleted || result.SecuritiesDeleted != 0 {
			t.Errorf("expected nothing else deleted, got %+v", result)
		}
		testutil.AssertCount(t, db, "clients", 0)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewClientService(db)

		_, err := svc.DeleteClient(ctx, "missing")
		testutil.AssertAppError(t, err, "CLIENT_NOT_FOUND")
	})
}
