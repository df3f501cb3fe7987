package session

import (
	"context"
	"log/slog"

	"voicecollect/internal/domain/profile"
	"voicecollect/internal/domain/prompt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var instructionAssembliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "instruction_assemblies_total",
	Help: "Total number of system instruction assemblies, by source.",
}, []string{"source"})

// Configurator runs the load -> assemble -> set pipeline that keeps the
// instruction slot in sync with the persisted customer profile.
type Configurator struct {
	profiles  profile.Service
	assembler *prompt.Assembler
	slot      *InstructionSlot
	logger    *slog.Logger
}

func NewConfigurator(profiles profile.Service, assembler *prompt.Assembler, slot *InstructionSlot, logger *slog.Logger) *Configurator {
	if profiles == nil || assembler == nil || slot == nil || logger == nil {
		panic("Configurator dependencies cannot be nil")
	}
	return &Configurator{
		profiles:  profiles,
		assembler: assembler,
		slot:      slot,
		logger:    logger.With("component", "Configurator"),
	}
}

// Refresh re-derives the current instructions from the stored profile.
// Absence of a profile is not an error: the slot is set to the degraded
// no-context persona. An assembly failure leaves the slot untouched.
func (c *Configurator) Refresh(ctx context.Context) error {
	rec, err := c.profiles.CurrentProfile(ctx)
	if err != nil {
		// CurrentProfile degrades load failures internally; an error here
		// is a programming fault, not a storage condition.
		c.logger.ErrorContext(ctx, "Failed to load current profile", slog.Any("error", err))
		return err
	}

	instructions, err := c.assembler.Assemble(rec)
	if err != nil {
		c.logger.ErrorContext(ctx, "Instruction assembly failed, keeping previous instructions", slog.Any("error", err))
		return err
	}

	source := "record"
	if rec == nil {
		source = "fallback"
		c.logger.WarnContext(ctx, "No customer profile found, using degraded no-context instructions")
	}
	instructionAssembliesTotal.WithLabelValues(source).Inc()

	c.slot.Set(instructions)
	c.logger.InfoContext(ctx, "Session instructions refreshed",
		slog.String("source", source),
		slog.Int("length", len(instructions)),
	)
	return nil
}

// Slot exposes the holder consumed by the realtime session subsystem.
func (c *Configurator) Slot() *InstructionSlot {
	return c.slot
}
