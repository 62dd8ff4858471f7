package stealth

import (
	"testing"
)

// Announcements generated for a recipient must always pass that
// recipient's view-tag check.
func TestCheckAnnouncementNoFalseNegatives(t *testing.T) {
	material := testMaterial(t)
	meta, err := NewMetaAddress("eth", &material.SpendingKey.PublicKey, &material.ViewingKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 64; i++ {
		ann := testAnnouncement(t, meta)
		if !CheckAnnouncement(material.ViewingKey, ann) {
			t.Fatal("rejected an announcement generated for this recipient")
		}
	}
}

func TestCheckAnnouncementRejectsForeignScheme(t *testing.T) {
	material := testMaterial(t)
	meta, err := NewMetaAddress("eth", &material.SpendingKey.PublicKey, &material.ViewingKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	ann := testAnnouncement(t, meta)
	ann.SchemeID = 7
	if CheckAnnouncement(material.ViewingKey, ann) {
		t.Fatal("accepted an announcement with an unknown scheme id")
	}
	if CheckAnnouncement(material.ViewingKey, nil) {
		t.Fatal("accepted a nil announcement")
	}
}

// Foreign announcements should pass the one-byte tag about 1/256 of the
// time, and every such false positive must die in full recovery.
func TestViewTagSelectivity(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	material := testMaterial(t)

	other, err := RandomMetaAddress("eth")
	if err != nil {
		t.Fatal(err)
	}

	const total = 4096
	passed := 0
	for i := 0; i < total; i++ {
		ann := testAnnouncement(t, other)
		if !CheckAnnouncement(material.ViewingKey, ann) {
			continue
		}
		passed++
		if _, err := RecoverStealthKey(material.SpendingKey, material.ViewingKey, ann); err != ErrNoMatch {
			t.Fatalf("false positive survived recovery: %v", err)
		}
	}
	t.Logf("%d of %d foreign announcements passed the view tag", passed, total)

	// expectation is 16; anything near a full percent means the tag is
	// not filtering
	if passed > total/20 {
		t.Fatalf("view tag passed %d of %d foreign announcements", passed, total)
	}
}

func TestScanAnnouncements(t *testing.T) {
	material := testMaterial(t)
	meta, err := NewMetaAddress("eth", &material.SpendingKey.PublicKey, &material.ViewingKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	other, err := RandomMetaAddress("eth")
	if err != nil {
		t.Fatal(err)
	}

	const mine = 5
	anns := make([]*Announcement, 0, 105)
	for i := 0; i < mine; i++ {
		anns = append(anns, testAnnouncement(t, meta))
	}
	for i := 0; i < 100; i++ {
		anns = append(anns, testAnnouncement(t, other))
	}

	recovered := 0
	for ann := range ScanAnnouncements(material.ViewingKey, anns) {
		if _, err := RecoverStealthKey(material.SpendingKey, material.ViewingKey, ann); err == nil {
			recovered++
		}
	}
	if recovered != mine {
		t.Fatalf("recovered %d announcements, want %d", recovered, mine)
	}
}

func TestScanAnnouncementsEmpty(t *testing.T) {
	material := testMaterial(t)
	out := ScanAnnouncements(material.ViewingKey, nil)
	if _, ok := <-out; ok {
		t.Fatal("empty scan emitted a result")
	}
}

// Abandoning the result channel early must not strand the workers.
func TestScanAnnouncementsAbandoned(t *testing.T) {
	material := testMaterial(t)
	meta, err := NewMetaAddress("eth", &material.SpendingKey.PublicKey, &material.ViewingKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	anns := make([]*Announcement, 0, 32)
	for i := 0; i < 32; i++ {
		anns = append(anns, testAnnouncement(t, meta))
	}
	out := ScanAnnouncements(material.ViewingKey, anns)
	<-out // take one match and walk away
}
