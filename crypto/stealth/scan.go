package stealth

import (
	"crypto/ecdsa"
	"runtime"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// CheckAnnouncement is the cheap pre-filter a recipient runs over every
// published announcement: one point multiplication, one hash, one byte
// compare. A match is only provisional — the one-byte tag passes roughly
// 1/256 of foreign announcements, and RecoverStealthKey settles those.
func CheckAnnouncement(viewingKey *ecdsa.PrivateKey, ann *Announcement) bool {
	if ann == nil || ann.SchemeID != SchemeSecp256k1 {
		return false
	}
	ephemeral, err := crypto.DecompressPubkey(ann.EphemeralPubKey)
	if err != nil {
		return false
	}
	sh := hashSharedPoint(viewingKey.D, ephemeral)
	return sh[0] == ann.ViewTag
}

// ScanAnnouncements filters a finite batch of announcements down to the
// view-tag matches. Candidates are checked concurrently; matches arrive on
// the returned channel in completion order, and the channel closes once
// the batch is exhausted. The channel is buffered for every possible
// match, so a caller that stops reading early leaks no goroutines.
func ScanAnnouncements(viewingKey *ecdsa.PrivateKey, anns []*Announcement) <-chan *Announcement {
	out := make(chan *Announcement, len(anns))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(anns) {
		workers = len(anns)
	}
	if workers < 1 {
		close(out)
		return out
	}

	jobs := make(chan *Announcement)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for ann := range jobs {
				if CheckAnnouncement(viewingKey, ann) {
					out <- ann
				}
			}
		}()
	}

	go func() {
		for _, ann := range anns {
			jobs <- ann
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	return out
}
