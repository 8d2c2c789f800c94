// Package commands implements the osc-log CLI commands.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer         *log.Layer
	Direction     *log.Direction
	Category      *log.Category
	AddressPrefix string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:         f.Layer,
		Direction:     f.Direction,
		Category:      f.Category,
		AddressPrefix: f.AddressPrefix,
	}
}

// eventLabel names the payload an event carries.
func eventLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Packet != nil && event.Packet.Kind == log.PacketKindBundle:
		return "Bundle"
	case event.Packet != nil:
		return "Message"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s", ts, shortenSessionID(event.SessionID),
		event.Direction.String(), event.Layer.String(), eventLabel(event))
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, " (%s)", event.RemoteAddr)
	}
	fmt.Fprintln(w)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Framing, event.Frame)
	case event.Packet != nil:
		formatPacketDetails(w, event.Packet)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails writes frame-specific details.
func formatFrameDetails(w io.Writer, framing string, frame *log.FrameEvent) {
	if framing != "" {
		fmt.Fprintf(w, "  Size: %d bytes (%s)\n", frame.Size, framing)
	} else {
		fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	}
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatPacketDetails writes decoded packet details.
func formatPacketDetails(w io.Writer, p *log.PacketEvent) {
	switch p.Kind {
	case log.PacketKindMessage:
		fmt.Fprintf(w, "  Address: %s\n", p.Address)
		fmt.Fprintf(w, "  TypeTag: %s\n", p.TypeTag)
	case log.PacketKindBundle:
		fmt.Fprintf(w, "  TimeTag: %s\n", osc.TimeTag(p.TimeTag))
		fmt.Fprintf(w, "  Elements: %d\n", p.Elements)
	}
	fmt.Fprintf(w, "  Size: %d bytes\n", p.Size)
	if p.Text != "" {
		fmt.Fprintf(w, "  Text: %s", p.Text)
		if p.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "frame":
		return log.LayerFrame, nil
	case "codec":
		return log.LayerCodec, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be frame or codec)", s)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "packet":
		return log.CategoryPacket, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be packet, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
