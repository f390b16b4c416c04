package geoloc

import "testing"

func TestOpenWithEmptyPathIsDisabled(t *testing.T) {
	svc, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	if svc.Enabled() {
		t.Error("Service opened with empty path should be disabled")
	}
}

func TestLookupOnDisabledServiceFails(t *testing.T) {
	svc, _ := Open("")
	if _, err := svc.Lookup("8.8.8.8"); err == nil {
		t.Fatal("expected error looking up on a disabled service")
	}
}

func TestOpenMissingDatabaseFails(t *testing.T) {
	if _, err := Open("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Fatal("expected error opening a nonexistent database file")
	}
}

func TestLookupRejectsInvalidIP(t *testing.T) {
	svc := &Service{enabled: true}
	if _, err := svc.Lookup("not-an-ip"); err == nil {
		t.Fatal("expected error for invalid IP string")
	}
}
