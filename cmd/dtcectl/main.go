// Command dtcectl is a small operator CLI for the gateway: submit a
// document and poll its status, useful for manual pipeline verification
// (SPEC_FULL.md §4 supplement). It intentionally uses only the stdlib
// flag package rather than a CLI framework, since the scope here is a
// couple of subcommands against one HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "submit":
		runSubmit(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "wait":
		runWait(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `dtcectl <submit|status|wait> [flags]

  submit -base http://localhost:8080 -key <api-key> (-file path.docx | -url https://...)
  status -base http://localhost:8080 -key <api-key> -job <jobId>
  wait   -base http://localhost:8080 -key <api-key> -job <jobId> -interval 2s -timeout 2m`)
}

func runSubmit(args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	base := fs.String("base", "http://localhost:8080", "gateway base URL")
	key := fs.String("key", "", "X-API-Key value")
	file := fs.String("file", "", "local document path to upload")
	docURL := fs.String("url", "", "documentUrl to submit instead of a file")
	fs.Parse(args)

	if *file == "" && *docURL == "" {
		fmt.Fprintln(os.Stderr, "submit: one of -file or -url is required")
		os.Exit(2)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fatalf("open %s: %v", *file, err)
		}
		defer f.Close()
		part, err := w.CreateFormFile("document", filepath.Base(*file))
		if err != nil {
			fatalf("create form file: %v", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			fatalf("copy file contents: %v", err)
		}
	}
	if *docURL != "" {
		if err := w.WriteField("documentUrl", *docURL); err != nil {
			fatalf("write documentUrl field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *base+"/api/v1/jobs/submit", &body)
	if err != nil {
		fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if *key != "" {
		req.Header.Set("X-API-Key", *key)
	}

	printResponse(doRequest(req))
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	base := fs.String("base", "http://localhost:8080", "gateway base URL")
	key := fs.String("key", "", "X-API-Key value")
	job := fs.String("job", "", "job id")
	fs.Parse(args)

	if *job == "" {
		fmt.Fprintln(os.Stderr, "status: -job is required")
		os.Exit(2)
	}
	printResponse(getStatus(*base, *key, *job))
}

func runWait(args []string) {
	fs := flag.NewFlagSet("wait", flag.ExitOnError)
	base := fs.String("base", "http://localhost:8080", "gateway base URL")
	key := fs.String("key", "", "X-API-Key value")
	job := fs.String("job", "", "job id")
	interval := fs.Duration("interval", 2*time.Second, "poll interval")
	timeout := fs.Duration("timeout", 2*time.Minute, "overall timeout")
	fs.Parse(args)

	if *job == "" {
		fmt.Fprintln(os.Stderr, "wait: -job is required")
		os.Exit(2)
	}

	deadline := time.Now().Add(*timeout)
	for {
		status, code := getStatus(*base, *key, *job)
		var record struct {
			Status string `json:"status"`
		}
		if code == http.StatusOK {
			_ = json.Unmarshal(status, &record)
			fmt.Printf("job %s: %s\n", *job, record.Status)
			if record.Status == "Complete" || record.Status == "Failed" {
				os.Exit(0)
			}
		}
		if time.Now().After(deadline) {
			fmt.Fprintln(os.Stderr, "wait: timed out")
			os.Exit(1)
		}
		time.Sleep(*interval)
	}
}

func getStatus(base, key, job string) ([]byte, int) {
	req, err := http.NewRequest(http.MethodGet, base+"/api/v1/jobs/"+job+"/status", nil)
	if err != nil {
		fatalf("build request: %v", err)
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	return doRequest(req)
}

func doRequest(req *http.Request) ([]byte, int) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fatalf("read response: %v", err)
	}
	return data, resp.StatusCode
}

func printResponse(body []byte, code int) {
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		fmt.Printf("HTTP %d\n%s\n", code, pretty.String())
		return
	}
	fmt.Printf("HTTP %d\n%s\n", code, body)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
