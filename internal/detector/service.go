package detector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

const (
	scriptName    = "pose_service.py"
	scriptEnv     = "MUSCLEMAP_POSE_SCRIPT"
	defaultPython = "python3"
)

// poseService is a running pose_service.py process. Requests are a 4-byte
// big-endian length followed by a JPEG image; each response is one JSON
// line.
type poseService struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// serviceArgs builds the command line flags for config.
func serviceArgs(script string, config Config) []string {
	return []string{
		script,
		"--model-complexity", strconv.Itoa(config.ModelComplexity),
		"--min-detection-confidence", strconv.FormatFloat(config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(config.MinTrackingConf, 'f', -1, 64),
	}
}

func startPoseService(python, script string, config Config) (*poseService, error) {
	cmd := exec.Command(python, serviceArgs(script, config)...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", scriptName, err)
	}

	return &poseService{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// exchange sends one encoded image and returns the response line.
func (s *poseService) exchange(image []byte) ([]byte, error) {
	if err := writeRequest(s.stdin, image); err != nil {
		return nil, err
	}
	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// stop closes stdin, which ends the service loop, and waits for the exit.
func (s *poseService) stop() error {
	s.stdin.Close()
	return s.cmd.Wait()
}

func writeRequest(w io.Writer, image []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(image)))

	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(image); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// searchDirs lists the directories searched for the service script and its
// virtual environment: the working directory and its parents, the
// executable's directory and ~/.musclemap.
func searchDirs() []string {
	dirs := []string{".", "..", filepath.Join("..", "..")}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".musclemap"))
	}
	return dirs
}

// findScript locates pose_service.py, preferring $MUSCLEMAP_POSE_SCRIPT.
func findScript() string {
	var candidates []string
	if env := os.Getenv(scriptEnv); env != "" {
		candidates = append(candidates, env)
	}
	for _, dir := range searchDirs() {
		candidates = append(candidates, filepath.Join(dir, "scripts", scriptName))
	}
	return firstExisting(candidates)
}

// findPython prefers a virtual environment interpreter next to the script
// search locations and falls back to python3 on PATH.
func findPython() string {
	var candidates []string
	for _, dir := range searchDirs() {
		candidates = append(candidates, filepath.Join(dir, "venv", "bin", "python"))
	}
	if p := firstExisting(candidates); p != "" {
		return p
	}
	return defaultPython
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
