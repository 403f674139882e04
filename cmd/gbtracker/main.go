package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/sabaki-audio/gbtracker/apu"
	"github.com/sabaki-audio/gbtracker/compiler"
	"github.com/sabaki-audio/gbtracker/data"
	"github.com/sabaki-audio/gbtracker/engine"
	"github.com/sabaki-audio/gbtracker/fileformat"
	"github.com/sabaki-audio/gbtracker/wavfile"
)

// Exit codes (spec.md §6): 0 ok, 1 bad args, 2 file error, 3 bad module.
const (
	exitOK = iota
	exitBadArgs
	exitFileError
	exitBadModule
)

// maxLoops caps how many times a non-halting song is replayed before
// render gives up waiting for a halt, so an accidentally infinite song
// still produces a bounded WAV file.
const maxLoops = 2

// renderSampleRate is the Mixer output rate render writes to disk at.
const renderSampleRate = 44100

func main() {
	app := cli.NewApp()
	app.Name = "gbtracker"
	app.Usage = "gbtracker <command> [arguments]"
	app.Description = "Game Boy tracker-module renderer and pattern-run probe"
	app.Commands = []cli.Command{
		{
			Name:      "render",
			Usage:     "render a module's song to a WAV file",
			ArgsUsage: "<module> [songIndex] <out.wav>",
			Action:    runRender,
		},
		{
			Name:      "probe",
			Usage:     "print a song's pattern-run visit sequence and halt/loop classification",
			ArgsUsage: "<module> [songIndex]",
			Action:    runProbe,
		},
	}

	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			slog.Error(exitErr.Error())
			os.Exit(exitErr.ExitCode())
		}
		slog.Error(err.Error())
		os.Exit(exitBadArgs)
	}
}

func runRender(c *cli.Context) error {
	modulePath, songIndex, outPath, err := parseRenderArgs(c)
	if err != nil {
		return cli.NewExitError(err.Error(), exitBadArgs)
	}

	m, err := loadModule(modulePath)
	if err != nil {
		return err
	}

	song, err := m.Song(songIndex)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("bad module: %v", err), exitBadModule)
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("file error: %v", err), exitFileError)
	}
	defer outFile.Close()

	writer, err := wavfile.NewWriter(outFile, renderSampleRate)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("file error: %v", err), exitFileError)
	}

	run := compiler.PatternRun(song)

	a := apu.NewAPU(renderSampleRate)
	eng, err := engine.NewEngine(m, songIndex, a)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("bad module: %v", err), exitBadModule)
	}

	for {
		eng.Step()
		if n := a.SamplesAvailable(); n > 0 {
			if err := writer.WriteFloat32(a.ReadSamples(n)); err != nil {
				return cli.NewExitError(fmt.Sprintf("file error: %v", err), exitFileError)
			}
		}
		if eng.Halted() {
			break
		}
		if !run.Halts && eng.LoopCount() >= maxLoops {
			break
		}
	}

	if err := writer.Close(); err != nil {
		return cli.NewExitError(fmt.Sprintf("file error: %v", err), exitFileError)
	}

	slog.Info("rendered", "module", modulePath, "song", song.Name, "out", outPath, "frames", writer.SampleCount())
	return nil
}

func runProbe(c *cli.Context) error {
	modulePath, songIndex, err := parseProbeArgs(c)
	if err != nil {
		return cli.NewExitError(err.Error(), exitBadArgs)
	}

	m, err := loadModule(modulePath)
	if err != nil {
		return err
	}

	song, err := m.Song(songIndex)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("bad module: %v", err), exitBadModule)
	}

	run := compiler.PatternRun(song)

	for i, v := range run.Visits {
		marker := ""
		if !run.Halts && i == run.LoopIndex {
			marker = " <- loop target"
		}
		fmt.Printf("visit %3d: order %3d, %3d rows%s\n", i, v.PatternID, v.RowCount, marker)
	}

	if run.Halts {
		fmt.Println("classification: halts")
	} else {
		fmt.Printf("classification: loops to order %d\n", run.Visits[run.LoopIndex].PatternID)
	}

	return nil
}

func parseRenderArgs(c *cli.Context) (modulePath string, songIndex int, outPath string, err error) {
	switch c.NArg() {
	case 2:
		return c.Args().Get(0), 0, c.Args().Get(1), nil
	case 3:
		idx, perr := parseSongIndex(c.Args().Get(1))
		if perr != nil {
			return "", 0, "", perr
		}
		return c.Args().Get(0), idx, c.Args().Get(2), nil
	default:
		return "", 0, "", errors.New("usage: render <module> [songIndex] <out.wav>")
	}
}

func parseProbeArgs(c *cli.Context) (modulePath string, songIndex int, err error) {
	switch c.NArg() {
	case 1:
		return c.Args().Get(0), 0, nil
	case 2:
		idx, perr := parseSongIndex(c.Args().Get(1))
		if perr != nil {
			return "", 0, perr
		}
		return c.Args().Get(0), idx, nil
	default:
		return "", 0, errors.New("usage: probe <module> [songIndex]")
	}
}

func parseSongIndex(s string) (int, error) {
	var idx int
	if _, err := fmt.Sscanf(s, "%d", &idx); err != nil {
		return 0, fmt.Errorf("invalid song index %q", s)
	}
	return idx, nil
}

func loadModule(path string) (*data.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cli.NewExitError(fmt.Sprintf("file error: %v", err), exitFileError)
	}
	defer f.Close()

	m, err := fileformat.Read(f)
	if err != nil {
		return nil, cli.NewExitError(fmt.Sprintf("bad module: %v", err), exitBadModule)
	}
	return m, nil
}
