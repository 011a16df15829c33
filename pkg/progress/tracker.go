// Package progress provides a byte-rate ticker used by the CLI while
// running Add/Update/Extract over large entries, and an io.Writer wrapper
// that feeds it. Adapted from the teacher's tracker: the archive engine
// itself never imports this package, so it stays a pure ambient concern
// consumed only by the CLI collaborator, per spec.md's scoping of progress
// rendering as an external collaborator.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	totalBytesProcessed atomic.Uint64
	totalSize           uint64
	done                chan struct{}
	progressRunning     bool
	progressMutex       sync.Mutex
	isTestMode          bool
	operationName       string
)

// Init starts a new progress session tracking size total bytes.
func Init(size uint64) {
	progressMutex.Lock()
	defer progressMutex.Unlock()

	if progressRunning {
		return
	}

	totalBytesProcessed.Store(0)
	totalSize = size
	if totalSize == 0 {
		totalSize = 1
	}

	done = make(chan struct{})
	progressRunning = true
	go logger()
}

// SetTestMode enables or disables the quieter test-mode output.
func SetTestMode(enabled bool) {
	progressMutex.Lock()
	defer progressMutex.Unlock()
	isTestMode = enabled
}

// SetOperationName labels the operation in subsequent ticker output.
func SetOperationName(name string) {
	progressMutex.Lock()
	defer progressMutex.Unlock()
	operationName = name
}

// Stop ends the current progress session.
func Stop() {
	progressMutex.Lock()
	defer progressMutex.Unlock()

	if progressRunning {
		close(done)
		progressRunning = false
	}
}

// AddBytes records n additional processed bytes.
func AddBytes(n uint64) {
	if n > 0 {
		totalBytesProcessed.Add(n)
	}
}

func formatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatRate(bytesPerSec uint64) string {
	const unit = 1024
	if bytesPerSec < unit {
		return fmt.Sprintf("%d B/s", bytesPerSec)
	}
	div, exp := uint64(unit), 0
	for n := bytesPerSec / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB/s", float64(bytesPerSec)/float64(div), "KMGTPE"[exp])
}

func logger() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	var prevBytes uint64
	var prevPercentage float64
	startTime := time.Now()
	lastOutputTime := time.Now()

	op := "Processing"
	if operationName != "" {
		op = operationName
	}

	if isTestMode {
		fmt.Printf("[TEST] %s started\n", op)
	} else {
		fmt.Printf("Starting %s...\n", op)
	}

	for {
		select {
		case <-ticker.C:
			currentBytes := totalBytesProcessed.Load()
			rate := (currentBytes - prevBytes) * 4
			prevBytes = currentBytes

			currentPercentage := float64(currentBytes) / float64(totalSize) * 100

			if isTestMode {
				if currentPercentage >= 100 && prevPercentage < 100 {
					fmt.Printf("[TEST] %s complete (100%%)\n", op)
				} else if currentPercentage-prevPercentage >= 25 {
					fmt.Printf("[TEST] %s at %.0f%%\n", op, currentPercentage)
				}
			} else {
				timeSinceLastOutput := time.Since(lastOutputTime)
				percentageDiff := currentPercentage - prevPercentage
				if timeSinceLastOutput >= time.Second || percentageDiff >= 10 ||
					(currentPercentage >= 100 && prevPercentage < 100) {
					lastOutputTime = time.Now()
					sizeInfo := formatSize(currentBytes)
					rateInfo := formatRate(rate)
					if totalSize > 1 {
						fmt.Printf("%s: %s of %s (%.1f%%) | Rate: %s\n",
							op, sizeInfo, formatSize(totalSize), currentPercentage, rateInfo)
					} else {
						fmt.Printf("%s: %s | Rate: %s\n", op, sizeInfo, rateInfo)
					}
				}
			}

			prevPercentage = currentPercentage
			os.Stdout.Sync()
		case <-done:
			if !isTestMode {
				totalTime := time.Since(startTime).Seconds()
				processed := totalBytesProcessed.Load()
				avgRate := formatRate(uint64(float64(processed) / totalTime))
				fmt.Printf("%s completed: %s in %.1fs (avg %s)\n",
					op, formatSize(processed), totalTime, avgRate)
			}
			return
		}
	}
}

// Writer wraps an io.Writer, feeding AddBytes with every successful write.
type Writer struct {
	W io.Writer
}

func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.W.Write(p)
	if err == nil && n > 0 {
		AddBytes(uint64(n))
	}
	return
}
