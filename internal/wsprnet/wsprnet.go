// Package wsprnet uploads decode results to wsprnet.org's spot database.
// Adapted from the teacher's decoder_wsprnet.go: worker-pool upload with a
// bounded retry queue, HTTP connection reuse, and the same form-encoded POST
// schema, now fed from internal/wspr.Decode results instead of the
// teacher's DecodeInfo type.
package wsprnet

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/cwsl/wsprgo/internal/wspr"
)

const (
	serverHostname = "wsprnet.org"
	maxQueueSize   = 10000
	maxRetries     = 3
	workerThreads  = 5
	modeWSPR       = 2
)

// Report is one spot ready for upload, derived from a wspr.Decode.
type Report struct {
	Callsign      string
	Locator       string
	SNR           int
	TxFrequencyHz uint64
	DialFreqHz    uint64
	DT            float64
	Drift         int
	DBm           int
	Timestamp     time.Time
	RetryCount    int
	NextRetryTime time.Time
}

// ReportFromDecode converts a wspr.Decode into an uploadable Report, or
// reports ok=false for decodes that should not be forwarded (unresolved
// hashed callsigns never reach wsprnet.org, per spec.md §7's hash-miss
// handling).
func ReportFromDecode(d wspr.Decode, ts time.Time) (Report, bool) {
	if d.Callsign == wspr.UnresolvedCallsign {
		return Report{}, false
	}
	return Report{
		Callsign:      d.Callsign,
		Locator:       d.Grid,
		SNR:           int(d.SNRDb),
		TxFrequencyHz: uint64(d.TxFrequencyMHz * 1e6),
		DialFreqHz:    uint64(d.DialFreqMHz * 1e6),
		DT:            d.TimeOffsetS,
		Drift:         int(d.DriftHzPerS),
		DBm:           d.PowerDBm,
		Timestamp:     ts,
	}, true
}

// Uploader queues and submits Reports to wsprnet.org.
type Uploader struct {
	receiverCallsign string
	receiverLocator  string
	programName      string
	programVersion   string

	httpClient *http.Client

	queue      []Report
	queueMutex sync.Mutex

	retryQueue []Report
	retryMutex sync.Mutex

	countSendsOK      int
	countSendsErrored int
	countRetries      int
	statsMutex        sync.Mutex

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates an Uploader. callsign and locator are the receiving station's
// own identity, required by the wsprnet.org protocol.
func New(callsign, locator, programName, programVersion string) (*Uploader, error) {
	if callsign == "" || locator == "" || programName == "" {
		return nil, fmt.Errorf("wsprnet: callsign, locator, and program name are required")
	}
	programVersion = normalizeVersion(programVersion)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Uploader{
		receiverCallsign: callsign,
		receiverLocator:  locator,
		programName:      programName,
		programVersion:   programVersion,
		httpClient: &http.Client{
			Timeout:   3 * time.Second,
			Transport: transport,
		},
		queue:      make([]Report, 0, maxQueueSize),
		retryQueue: make([]Report, 0, maxQueueSize),
		stopCh:     make(chan struct{}),
	}, nil
}

// normalizeVersion canonicalises a program version string for the
// "version" upload field. wsprnet.org rejects obviously malformed version
// strings, so a parseable semver is reduced to its canonical form; anything
// else is passed through as-is rather than rejected outright, since the
// field is advisory, not authenticated.
func normalizeVersion(v string) string {
	if v == "" {
		return "0.0.0"
	}
	parsed, err := version.NewVersion(v)
	if err != nil {
		return v
	}
	return parsed.String()
}

// Start launches the worker pool.
func (u *Uploader) Start() {
	u.running = true
	for i := 0; i < workerThreads; i++ {
		u.wg.Add(1)
		go u.workerThread()
	}
	log.Printf("WSPRNet: started %d worker threads for parallel uploads", workerThreads)
}

// Submit enqueues a report for upload.
func (u *Uploader) Submit(r Report) error {
	if !u.running {
		return fmt.Errorf("wsprnet: uploader not running")
	}
	u.queueMutex.Lock()
	defer u.queueMutex.Unlock()
	if len(u.queue) >= maxQueueSize {
		return fmt.Errorf("wsprnet: queue full")
	}
	u.queue = append(u.queue, r)
	return nil
}

func (u *Uploader) workerThread() {
	defer u.wg.Done()

	for u.running {
		var report Report
		haveReport := false

		u.queueMutex.Lock()
		if len(u.queue) > 0 {
			report = u.queue[0]
			u.queue = u.queue[1:]
			haveReport = true
		}
		u.queueMutex.Unlock()

		if !haveReport {
			now := time.Now()
			u.retryMutex.Lock()
			if len(u.retryQueue) > 0 && u.retryQueue[0].NextRetryTime.Before(now) {
				report = u.retryQueue[0]
				u.retryQueue = u.retryQueue[1:]
				haveReport = true
			}
			u.retryMutex.Unlock()
		}

		if !haveReport {
			select {
			case <-time.After(100 * time.Millisecond):
			case <-u.stopCh:
				return
			}
			continue
		}

		if u.sendReport(&report) {
			u.statsMutex.Lock()
			u.countSendsOK++
			u.statsMutex.Unlock()
			continue
		}

		u.statsMutex.Lock()
		if report.RetryCount < maxRetries {
			retryDelays := []int{5, 15, 60}
			delay := retryDelays[report.RetryCount]
			report.RetryCount++
			report.NextRetryTime = time.Now().Add(time.Duration(delay) * time.Second)

			u.retryMutex.Lock()
			if len(u.retryQueue) < maxQueueSize {
				u.retryQueue = append(u.retryQueue, report)
				u.countRetries++
			}
			u.retryMutex.Unlock()
			log.Printf("WSPRNet: failed to send report for %s, retrying in %ds (attempt %d/%d)",
				report.Callsign, delay, report.RetryCount, maxRetries)
		} else {
			u.countSendsErrored++
			log.Printf("WSPRNet: failed to send report for %s after %d retries, giving up",
				report.Callsign, maxRetries)
		}
		u.statsMutex.Unlock()
	}
}

func (u *Uploader) sendReport(r *Report) bool {
	postData := u.buildPostData(r)

	req, err := http.NewRequest("POST", fmt.Sprintf("http://%s/post?", serverHostname), strings.NewReader(postData))
	if err != nil {
		log.Printf("WSPRNet: failed to create request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Connection", "Keep-Alive")
	req.Header.Set("Host", serverHostname)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		log.Printf("WSPRNet: failed to send request: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		return true
	}
	log.Printf("WSPRNet: unexpected response: %d %s", resp.StatusCode, resp.Status)
	return false
}

func (u *Uploader) buildPostData(r *Report) string {
	tm := r.Timestamp.UTC()
	params := url.Values{}
	params.Set("function", "wspr")
	params.Set("rcall", u.receiverCallsign)
	params.Set("rgrid", u.receiverLocator)
	params.Set("rqrg", fmt.Sprintf("%.6f", float64(r.DialFreqHz)/1e6))
	params.Set("date", tm.Format("060102"))
	params.Set("time", tm.Format("1504"))
	params.Set("sig", fmt.Sprintf("%d", r.SNR))
	params.Set("dt", fmt.Sprintf("%.2f", r.DT))
	params.Set("drift", fmt.Sprintf("%d", r.Drift))
	params.Set("tcall", r.Callsign)
	params.Set("tgrid", r.Locator)
	params.Set("tqrg", fmt.Sprintf("%.6f", float64(r.TxFrequencyHz)/1e6))
	params.Set("dbm", fmt.Sprintf("%d", r.DBm))
	if u.programVersion != "" {
		params.Set("version", fmt.Sprintf("%s %s", u.programName, u.programVersion))
	} else {
		params.Set("version", u.programName)
	}
	params.Set("mode", fmt.Sprintf("%d", modeWSPR))
	return params.Encode()
}

// Stop drains the worker pool and reports final statistics.
func (u *Uploader) Stop() {
	if !u.running {
		return
	}
	log.Println("WSPRNet: stopping...")
	u.running = false
	close(u.stopCh)
	u.wg.Wait()
	u.httpClient.CloseIdleConnections()

	u.statsMutex.Lock()
	log.Printf("WSPRNet: successful=%d failed=%d retries=%d", u.countSendsOK, u.countSendsErrored, u.countRetries)
	u.statsMutex.Unlock()
	log.Println("WSPRNet: stopped")
}
