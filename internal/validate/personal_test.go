package validate

import "testing"

func TestName(t *testing.T) {
	for _, ok := range []string{"Maria Lopez", "José Ñahui", "Ana"} {
		if err := Name(ok); err != nil {
			t.Fatalf("expected %q valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"", "Jo", "Maria123", "Maria_Lopez"} {
		if err := Name(bad); err == nil {
			t.Fatalf("expected error for name %q", bad)
		}
	}
	long := make([]rune, 51)
	for i := range long {
		long[i] = 'a'
	}
	if err := Name(string(long)); err == nil {
		t.Fatalf("expected error for 51-char name")
	}
}

func TestDNI(t *testing.T) {
	if err := DNI("12345678"); err != nil {
		t.Fatalf("expected valid DNI, got %v", err)
	}
	for _, bad := range []string{"", "1234567", "123456789", "1234567a", "11111111"} {
		if err := DNI(bad); err == nil {
			t.Fatalf("expected error for DNI %q", bad)
		}
	}
}

func TestPhoneNumber(t *testing.T) {
	if err := PhoneNumber("987654321"); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}
	for _, bad := range []string{"", "98765432", "9876543210", "887654321", "98765432a"} {
		if err := PhoneNumber(bad); err == nil {
			t.Fatalf("expected error for phone %q", bad)
		}
	}
}

func TestOriginDestination(t *testing.T) {
	if err := OriginDestination("Lima", "Arequipa"); err != nil {
		t.Fatalf("expected valid pair, got %v", err)
	}
	for _, tc := range [][2]string{{"", "Arequipa"}, {"Lima", ""}, {"Lima", "lima"}, {"Lima", " LIMA "}} {
		if err := OriginDestination(tc[0], tc[1]); err == nil {
			t.Fatalf("expected error for %q -> %q", tc[0], tc[1])
		}
	}
}

func TestEmailAndPassword(t *testing.T) {
	if err := Email("maria@example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}
	for _, bad := range []string{"", "maria", "maria@", "@example.com", "a b@c.d"} {
		if err := Email(bad); err == nil {
			t.Fatalf("expected error for email %q", bad)
		}
	}
	if err := Password("secret1"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
	for _, bad := range []string{"", "12345"} {
		if err := Password(bad); err == nil {
			t.Fatalf("expected error for password %q", bad)
		}
	}
}

func TestMaskPhoneNumber(t *testing.T) {
	if got := MaskPhoneNumber("987654321"); got != "••••••321" {
		t.Fatalf("MaskPhoneNumber = %q", got)
	}
	if got := MaskPhoneNumber("321"); got != "321" {
		t.Fatalf("MaskPhoneNumber short = %q", got)
	}
}
