// CLI-facing helpers to list, page through, tail, and grep procfleet's
// categorized run logs and per-job run logs.
package log

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"procfleet/config"
)

// ListLogs prints the known categorized log files and any per-job run logs
// found under cfg.LogsPath.
func ListLogs(cfg *config.Config) {
	fmt.Println("Available log files:")
	fmt.Println("  00 or results  - 00_last_results.log")
	fmt.Println("  01 or success  - 01_success_list.log")
	fmt.Println("  02 or failure  - 02_failure_list.log")
	fmt.Println("  05 or abnormal - 05_abnormal_output.log")
	fmt.Println("  07 or debug    - 07_debug.log")
	fmt.Println()

	runsDir := filepath.Join(cfg.LogsPath, "runs")
	if _, err := os.Stat(runsDir); err == nil {
		fmt.Println("Per-job run logs:")
		filepath.Walk(runsDir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(path, ".log") {
				return nil
			}
			rel, _ := filepath.Rel(runsDir, path)
			fmt.Printf("  %s\n", strings.TrimSuffix(rel, ".log"))
			return nil
		})
	}
}

// ViewLog prints logName (a categorized log file), through a pager if one
// is available.
func ViewLog(cfg *config.Config, logName string) {
	viewFile(filepath.Join(cfg.LogsPath, logName))
}

// ViewRunLog prints jobID's per-job run log.
func ViewRunLog(cfg *config.Config, jobID string) {
	viewFile(filepath.Join(cfg.LogsPath, "runs", jobID+".log"))
}

func viewFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return
	}
	defer file.Close()

	if usePager() {
		viewWithPager(path)
		return
	}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}
}

func usePager() bool {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}
	path, err := exec.LookPath(pager)
	return err == nil && path != ""
}

func viewWithPager(path string) {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}
	cmd := exec.Command(pager, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Run()
}

// TailLog prints the last n lines of logName.
func TailLog(cfg *config.Config, logName string, n int) {
	lines, err := readLines(filepath.Join(cfg.LogsPath, logName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return
	}
	start := len(lines) - n
	if start < 0 {
		start = 0
	}
	for _, l := range lines[start:] {
		fmt.Println(l)
	}
}

// GrepLog prints lines of logName containing pattern, with line numbers.
func GrepLog(cfg *config.Config, logName, pattern string) {
	lines, err := readLines(filepath.Join(cfg.LogsPath, logName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return
	}
	for i, l := range lines {
		if strings.Contains(l, pattern) {
			fmt.Printf("%d: %s\n", i+1, l)
		}
	}
}

// Summary returns counts of recorded successes and failures from the
// categorized log files.
func Summary(cfg *config.Config) map[string]int {
	out := make(map[string]int)
	if n, err := countLines(filepath.Join(cfg.LogsPath, "01_success_list.log")); err == nil {
		out["success"] = n
	}
	if n, err := countLines(filepath.Join(cfg.LogsPath, "02_failure_list.log")); err == nil {
		out["failed"] = n
	}
	return out
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func countLines(path string) (int, error) {
	lines, err := readLines(path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			count++
		}
	}
	return count, nil
}
