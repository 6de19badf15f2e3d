package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"blake3sum/blake3session"
	"blake3sum/xsum"
)

func main() {
	dir := flag.String("dir", ".", "directory to scan")
	out := flag.String("out", "hashes.txt", "output file (for hashing)")
	algo := flag.String("algo", xsum.DefaultName, "algorithm: "+strings.Join(xsum.Names(), ", "))
	keyHex := flag.String("key", "", "hex-encoded 32-byte key (keyed blake3)")
	size := flag.Int("size", blake3session.DefaultDigestSize, "blake3 digest size in bytes")
	verify := flag.Bool("verify", false, "verify mode")
	list := flag.String("list", "", "list file for verify mode")
	verbose := flag.Bool("verbose", false, "verbose verify output")
	progress := flag.Bool("progress", false, "show progress updates")
	derive := flag.Bool("derive", false, "derive a subkey instead of hashing files")
	deriveCtx := flag.String("context", "", "derive mode: domain-separation context")
	material := flag.String("material", "", "derive mode: key material file (default stdin)")
	length := flag.Int("length", blake3session.DefaultDigestSize, "derive mode: output length in bytes")
	flag.Parse()

	if *derive {
		if err := deriveSubkey(*deriveCtx, *material, *length); err != nil {
			log.Fatal(err)
		}
		return
	}

	hashFile, err := newHashFunc(*algo, *keyHex, *size)
	if err != nil {
		log.Fatal(err)
	}

	if *verify {
		if *list == "" {
			log.Fatal("-list required in verify mode")
		}
		if err := verifyChecksums(*dir, *list, hashFile, *verbose, *progress); err != nil {
			log.Fatal(err)
		}
	} else {
		if err := generateChecksums(*dir, *out, hashFile, *progress); err != nil {
			log.Fatal(err)
		}
	}
}

// deriveSubkey prints the hex subkey derived from key material read from a
// file or stdin.
func deriveSubkey(context, materialPath string, length int) error {
	var material []byte
	var err error
	if materialPath == "" {
		material, err = io.ReadAll(os.Stdin)
	} else {
		material, err = os.ReadFile(materialPath)
	}
	if err != nil {
		return err
	}

	derived, err := blake3session.DeriveKey(material, []byte(context), length)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(derived))
	return nil
}

// newHashFunc builds the per-file checksum function from the flags. Keyed
// hashing and non-default digest sizes are blake3-only; everything else goes
// through the algorithm registry.
func newHashFunc(algo, keyHex string, size int) (func(string) (string, error), error) {
	if keyHex == "" && size == blake3session.DefaultDigestSize {
		a, err := xsum.Lookup(algo)
		if err != nil {
			return nil, err
		}
		return a.File, nil
	}

	if algo != xsum.DefaultName {
		return nil, fmt.Errorf("-key and -size only apply to -algo %s", xsum.DefaultName)
	}

	opts := []blake3session.Option{blake3session.WithDigestSize(size)}
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("decoding -key: %w", err)
		}
		opts = append(opts, blake3session.WithKey(key))
	}

	// Surface bad flag values now, before walking the tree.
	if _, err := blake3session.New(opts...); err != nil {
		return nil, err
	}

	return func(path string) (string, error) {
		s, err := blake3session.New(opts...)
		if err != nil {
			return "", err
		}
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := io.Copy(s, f); err != nil {
			return "", err
		}
		return s.SumHex(), nil
	}, nil
}

func generateChecksums(dir, output string, hashFile func(string) (string, error), progress bool) error {
	processed := map[string]bool{}
	if f, err := os.Open(output); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			parts := strings.SplitN(line, "\t", 2)
			if len(parts) == 2 {
				processed[parts[1]] = true
			}
		}
		f.Close()
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	mu := sync.Mutex{}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !processed[path] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	total := len(paths)
	var processedCount int64

	jobs := make(chan string)
	wg := sync.WaitGroup{}
	workers := runtime.NumCPU()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				hash, err := hashFile(path)
				if err != nil {
					log.Printf("%v", err)
				} else {
					line := fmt.Sprintf("%s\t%s\n", hash, path)
					mu.Lock()
					if _, err := file.WriteString(line); err == nil {
						file.Sync()
					}
					mu.Unlock()
				}
				atomic.AddInt64(&processedCount, 1)
			}
		}()
	}

	ticker := startProgress(progress, total, &processedCount)

	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
	if ticker != nil {
		ticker.Stop()
		fmt.Printf("%d/%d\n", processedCount, total)
	}
	return nil
}

func verifyChecksums(dir, listfile string, hashFile func(string) (string, error), verbose, progress bool) error {
	type entry struct {
		hash string
		path string
	}
	var entries []entry

	f, err := os.Open(listfile)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(f)
	var prefix string
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) == 2 {
			p := strings.ReplaceAll(parts[1], "\\", "/")
			if first {
				prefix = p
				first = false
			} else {
				prefix = commonPrefix(prefix, p)
			}
			entries = append(entries, entry{hash: parts[0], path: p})
		}
	}
	f.Close()

	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		prefix = prefix[:i+1]
	} else {
		prefix = ""
	}

	expected := map[string]string{}
	var paths []string
	for _, e := range entries {
		rel := strings.TrimPrefix(e.path, prefix)
		expected[rel] = e.hash
		paths = append(paths, rel)
	}

	var match, mismatch int

	total := len(paths)
	var processedCount int64

	type result struct {
		path   string
		status string
		ok     bool
	}

	jobs := make(chan string)
	workers := runtime.NumCPU()
	results := make(chan result, workers)
	done := make(chan struct{})
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				path := filepath.Join(dir, name)
				exp, ok := expected[name]
				hash, hErr := hashFile(path)
				r := result{path: path}
				if hErr != nil {
					r.status = hErr.Error()
				} else if !ok || exp != hash {
					r.status = "MISMATCH"
				} else {
					r.status = "OK"
					r.ok = true
				}
				results <- r
				atomic.AddInt64(&processedCount, 1)
			}
		}()
	}

	go func() {
		for r := range results {
			if r.ok {
				match++
			} else {
				mismatch++
			}
			if verbose || r.status == "MISMATCH" {
				fmt.Printf("%s %s\n", r.path, r.status)
			}
		}
		done <- struct{}{}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ticker := startProgress(progress, total, &processedCount)

	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
	if ticker != nil {
		ticker.Stop()
		fmt.Printf("%d/%d\n", processedCount, total)
	}

	<-done

	if !verbose {
		if mismatch == 0 {
			fmt.Println("All files match")
		}
	}
	fmt.Printf("Total:%d Match:%d Mismatch:%d\n", total, match, mismatch)
	return nil
}

func startProgress(enabled bool, total int, count *int64) *time.Ticker {
	if !enabled || total == 0 {
		return nil
	}
	ticker := time.NewTicker(time.Second)
	go func() {
		for range ticker.C {
			fmt.Printf("%d/%d\n", atomic.LoadInt64(count), total)
		}
	}()
	return ticker
}

func commonPrefix(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	i := 0
	for i < max && a[i] == b[i] {
		i++
	}
	return a[:i]
}
