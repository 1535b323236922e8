package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/cbegin/stemloop-go"
)

func main() {
	var (
		path         = flag.String("file", "", "path to a YAML mix file")
		volume       = flag.Float64("volume", 1.0, "player volume (overrides the file)")
		globalVolume = flag.Float64("global-volume", 1.0, "global volume scalar")
		lookAhead    = flag.Duration("lookahead", time.Second, "loop scheduling look-ahead (overrides the file)")
		fadeTime     = flag.Duration("fade", time.Second, "fade duration for f, o and profile keys (overrides the file)")
		profileName  = flag.String("profile", "", "profile to apply before playing")
		outPath      = flag.String("out", "", "render to this WAV file instead of playing live")
		seconds      = flag.Float64("seconds", 30, "length of the offline render")
		tick         = flag.Duration("tick", 10*time.Millisecond, "host update interval")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := newLogger(os.Stderr, *verbose)
	if *path == "" {
		logger.Fatal().Msg("-file is required")
	}
	if *tick <= 0 {
		logger.Fatal().Dur("tick", *tick).Msg("-tick must be positive")
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var opts []stemloop.PlayerOption
	if set["lookahead"] {
		opts = append(opts, stemloop.WithLookAhead(*lookAhead))
	}
	if set["fade"] {
		opts = append(opts, stemloop.WithDefaultFade(*fadeTime))
	}
	song, err := stemloop.OpenSong(*path, logger, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("open song")
	}
	pl := song.Player
	if set["volume"] {
		pl.SetVolume(*volume)
	}
	pl.SetGlobalVolume(*globalVolume)
	if *profileName != "" {
		if err := pl.ApplyProfile(*profileName); err != nil {
			logger.Fatal().Err(err).Msg("apply profile")
		}
	}

	if *outPath != "" {
		if err := renderToFile(song, *outPath, *seconds, *tick, logger); err != nil {
			logger.Fatal().Err(err).Msg("render")
		}
		return
	}
	if err := playLive(song, *tick, logger); err != nil {
		logger.Fatal().Err(err).Msg("playback")
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: crlfWriter{w}, TimeFormat: "15:04:05.000"}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// crlfWriter keeps log lines aligned while the terminal is in raw mode.
type crlfWriter struct{ w io.Writer }

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func renderToFile(song *stemloop.Song, path string, seconds float64, tick time.Duration, logger zerolog.Logger) error {
	song.Player.Play()
	// Without a device the clips still decode in the background; wait for
	// them so the render does not start with silence.
	deadline := time.Now().Add(30 * time.Second)
	for !song.Player.AllLoaded() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	samples := stemloop.RenderOffline(song.Player, song.Bus, seconds, tick)
	wav := stemloop.EncodeWAVFloat32LE(samples, song.Bus.SampleRate(), 2)
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return err
	}
	logger.Info().Str("out", path).Float64("seconds", seconds).Msg("rendered")
	return nil
}

func playLive(song *stemloop.Song, tick time.Duration, logger zerolog.Logger) error {
	out, err := stemloop.OpenOutput(song.Bus)
	if err != nil {
		return err
	}
	defer out.Close()

	pl := song.Player
	events := pl.Watch()
	keys, restore := readKeys(logger)
	defer restore()

	fmt.Print("p play  f fade in  s stop  o fade out  1-9 profile  +/- volume  q quit\r\n")
	for i, name := range song.Profiles {
		if i < 9 {
			fmt.Printf("  %d %s\r\n", i+1, name)
		}
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			pl.Advance(now.Sub(last))
			last = now
		case ev := <-events:
			printEvent(ev)
		case k, ok := <-keys:
			if !ok || k == 'q' || k == 3 {
				pl.Stop()
				return nil
			}
			handleKey(song, k, logger)
		}
	}
}

func handleKey(song *stemloop.Song, k byte, logger zerolog.Logger) {
	pl := song.Player
	switch {
	case k == 'p':
		pl.Play()
	case k == 'f':
		pl.PlayAndFadeIn(0)
	case k == 's':
		pl.Stop()
	case k == 'o':
		pl.FadeOutAndStop(0)
	case k == '+' || k == '=':
		pl.SetVolume(pl.Volume() + 0.1)
		fmt.Printf("volume %.1f\r\n", pl.Volume())
	case k == '-':
		pl.SetVolume(pl.Volume() - 0.1)
		fmt.Printf("volume %.1f\r\n", pl.Volume())
	case k >= '1' && k <= '9':
		i := int(k - '1')
		if i >= len(song.Profiles) {
			return
		}
		if err := pl.FadeToProfile(song.Profiles[i], 0); err != nil {
			logger.Error().Err(err).Msg("profile")
		}
	}
}

func printEvent(ev stemloop.PlaybackEvent) {
	switch ev.Kind {
	case stemloop.EventStateChanged:
		fmt.Printf("state %s\r\n", ev.State)
	case stemloop.EventLoopScheduled:
		fmt.Print("loop scheduled\r\n")
	case stemloop.EventCrossfadeDone:
		fmt.Printf("now on profile %s\r\n", ev.Profile)
	case stemloop.EventEnvelopeDone:
		fmt.Print("fade done\r\n")
	case stemloop.EventLoadTimeout:
		fmt.Print("gave up waiting for clips\r\n")
	}
}

// readKeys puts stdin in raw mode and delivers single key presses. The
// returned func restores the terminal.
func readKeys(logger zerolog.Logger) (<-chan byte, func()) {
	keys := make(chan byte)
	fd := int(os.Stdin.Fd())
	restore := func() {}
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			logger.Warn().Err(err).Msg("raw mode unavailable, keys need Enter")
		} else {
			restore = func() { _ = term.Restore(fd, old) }
		}
	}
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()
	return keys, restore
}
