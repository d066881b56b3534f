package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fitbuddy/app/internal/assistant"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/provider/relay"
)

const localOwner = "local"

func newChatCmd() *cobra.Command {
	var apiURL, token, speakDir string
	var speak bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the AI coach through a running fitbuddy API",
		Long: "Reads one message per line. The conversation is kept locally and sent in full with every turn.\n" +
			"Type /reset to start over, /quit to leave.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = os.Getenv("FITBUDDY_TOKEN")
			}
			if token == "" {
				return errors.New("a bearer token is required (--token or FITBUDDY_TOKEN)")
			}
			client, err := relay.New(apiURL, token, &http.Client{Timeout: timeout})
			if err != nil {
				return err
			}

			s := newChatSession(assistant.NewOrchestrator(client, assistant.AlwaysEntitled), cmd.OutOrStdout())
			if speak {
				if err := os.MkdirAll(speakDir, 0o755); err != nil {
					return fmt.Errorf("create speech dir: %w", err)
				}
				// Audio is streamed by the API; no client timeout on that path.
				speechClient, err := relay.New(apiURL, token, &http.Client{})
				if err != nil {
					return err
				}
				s.player = assistant.NewPlayer(speechClient)
				s.speakDir = speakDir
			}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "fitbuddy API base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token from /api/v1/auth/login")
	cmd.Flags().BoolVar(&speak, "speak", false, "save each reply as spoken audio")
	cmd.Flags().StringVar(&speakDir, "speak-dir", "speech", "directory for saved audio files")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "per-turn request timeout")
	return cmd
}

// chatSession owns the transcript of one terminal conversation.
type chatSession struct {
	orchestrator *assistant.Orchestrator
	player       *assistant.Player
	speakDir     string
	out          io.Writer

	you, coach, note lipgloss.Style

	transcript domain.Transcript
	spoken     int
}

// newChatSession styles labels for out; plain text when out is not a terminal.
func newChatSession(orchestrator *assistant.Orchestrator, out io.Writer) *chatSession {
	r := lipgloss.NewRenderer(out)
	return &chatSession{
		orchestrator: orchestrator,
		out:          out,
		you:          r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		coach:        r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		note:         r.NewStyle().Faint(true),
	}
}

func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			s.prompt()
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			s.transcript = nil
			if s.player != nil {
				s.player.Stop()
			}
			_, _ = fmt.Fprintln(s.out, s.note.Render("(conversation cleared)"))
			s.prompt()
			continue
		}

		if err := s.turn(ctx, line); err != nil {
			return err
		}
		s.prompt()
	}
	return scanner.Err()
}

// turn sends one message. Recoverable failures are printed and the loop continues.
func (s *chatSession) turn(ctx context.Context, text string) error {
	next, reply, err := s.orchestrator.SendTurn(ctx, localOwner, s.transcript, text)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotEntitled):
		_, _ = fmt.Fprintln(s.out, "Upgrade to Pro to use the AI Assistant.")
		return nil
	case errors.Is(err, domain.ErrProvider):
		// Keep the user message so the next turn carries it.
		s.transcript = next
		_, _ = fmt.Fprintf(s.out, "error: %v\n", err)
		return nil
	case errors.Is(err, domain.ErrInvalidInput):
		return nil
	default:
		return err
	}

	s.transcript = next
	_, _ = fmt.Fprintf(s.out, "%s %s\n", s.coach.Render("coach>"), reply)

	if s.player != nil {
		path, err := s.save(ctx, reply)
		if err != nil {
			_, _ = fmt.Fprintf(s.out, "speech: %v\n", err)
		} else if path != "" {
			_, _ = fmt.Fprintln(s.out, s.note.Render("(audio saved to "+path+")"))
		}
	}
	return nil
}

// save plays reply into the next numbered mp3 file.
func (s *chatSession) save(ctx context.Context, reply string) (string, error) {
	pb, err := s.player.Play(ctx, reply)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return "", nil
		}
		return "", err
	}
	defer pb.Close()

	path := filepath.Join(s.speakDir, fmt.Sprintf("reply-%03d.mp3", s.spoken+1))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, pb)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Never leave a half-written file behind; the number is reused next time.
		_ = os.Remove(path)
		return "", err
	}
	s.spoken++
	return path, nil
}

func (s *chatSession) prompt() {
	_, _ = fmt.Fprint(s.out, s.you.Render("you>")+" ")
}
