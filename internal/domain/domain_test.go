package domain

import "testing"

func TestVerificationStateAdvancesForwardOnly(t *testing.T) {
	if !StateGuest.CanAdvanceTo(StatePending) {
		t.Fatal("expected guest -> pending to be allowed")
	}
	if !StateGuest.CanAdvanceTo(StateVerified) {
		t.Fatal("expected guest -> verified to be allowed")
	}
	if !StatePending.CanAdvanceTo(StateVerified) {
		t.Fatal("expected pending -> verified to be allowed")
	}
	if StateVerified.CanAdvanceTo(StatePending) {
		t.Fatal("expected verified -> pending to be rejected")
	}
	if StatePending.CanAdvanceTo(StateGuest) {
		t.Fatal("expected pending -> guest to be rejected")
	}
	if StateVerified.CanAdvanceTo(StateVerified) {
		t.Fatal("expected verified -> verified to be a no-op")
	}
}

func TestDefaultCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	inst, ok := catalog.Lookup("BTC/USDT")
	if !ok {
		t.Fatal("expected BTC/USDT in catalog")
	}
	if inst.Category != CategoryCrypto {
		t.Fatalf("expected crypto category, got %s", inst.Category)
	}
	if inst.AlwaysOpen {
		t.Fatal("expected BTC/USDT not to be always-open")
	}

	if _, ok := catalog.Lookup("XAU/USD"); ok {
		t.Fatal("expected unknown instrument to miss")
	}
}

func TestCatalogCategoriesAreStable(t *testing.T) {
	catalog := DefaultCatalog()
	cats := catalog.Categories()
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1] >= cats[i] {
			t.Fatalf("expected sorted categories, got %v", cats)
		}
	}
}

func TestDurationsForIsTotal(t *testing.T) {
	catalog := DefaultCatalog()
	for _, inst := range catalog.Instruments() {
		durations := DurationsFor(inst)
		if len(durations) == 0 {
			t.Fatalf("expected durations for %s", inst.ID)
		}
		if inst.AlwaysOpen {
			if durations[0] != "5 sec" {
				t.Fatalf("expected sub-minute durations for %s, got %v", inst.ID, durations)
			}
		} else if durations[0] != "1 min" {
			t.Fatalf("expected minute-or-longer durations for %s, got %v", inst.ID, durations)
		}
	}
}

func TestValidDuration(t *testing.T) {
	catalog := DefaultCatalog()
	otc, _ := catalog.Lookup("EUR/USD OTC")
	regular, _ := catalog.Lookup("EUR/USD")

	if !ValidDuration(otc, "15 sec") {
		t.Fatal("expected 15 sec to be valid for OTC")
	}
	if ValidDuration(regular, "15 sec") {
		t.Fatal("expected 15 sec to be invalid for a regular pair")
	}
	if !ValidDuration(regular, "5 min") {
		t.Fatal("expected 5 min to be valid for a regular pair")
	}
}
