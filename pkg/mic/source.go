package mic

import (
	"context"
	"io"
	"os/exec"
	"sync"
)

// CommandSource acquires the microphone by running an external recorder
// process and streaming its stdout. The default uses ALSA's arecord, which
// writes a WAV stream until killed.
type CommandSource struct {
	Path string
	Args []string
}

// DefaultSource records 16 kHz mono WAV from the default capture device.
func DefaultSource() *CommandSource {
	return &CommandSource{
		Path: "arecord",
		Args: []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav", "-"},
	}
}

// Open starts the recorder process. Closing the returned stream kills the
// process and reaps it, releasing the device.
func (s *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.Path, s.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processStream{pipe: stdout, cmd: cmd}, nil
}

type processStream struct {
	pipe io.ReadCloser
	cmd  *exec.Cmd
	once sync.Once
}

func (p *processStream) Read(b []byte) (int, error) {
	return p.pipe.Read(b)
}

// Close terminates the recorder process. The kill error is expected and
// swallowed; the pipe close error is what matters for callers.
func (p *processStream) Close() error {
	var err error
	p.once.Do(func() {
		err = p.pipe.Close()
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_ = p.cmd.Wait()
	})
	return err
}
