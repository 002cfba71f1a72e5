package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/contactsync/internal/formatter"
	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// List loads the full contact list and prints it.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	if err := r.engine.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	contacts := r.engine.Displayed()
	if cmd.Bool("json") {
		return r.writeJSON(contacts, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Contacts (%d)", len(contacts)))
	return r.writePlain("%s", formatter.ExportToText(contacts))
}

// Add creates a contact from flags.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	created, err := r.engine.Add(ctx, cmd.String("name"), cmd.String("phone"), cmd.String("email"))
	if err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}

	r.logger.Debug("contact created", "id", created.ID)
	return r.writePlain("✓ Added %s (id %s)\n", created.Name, created.ID)
}

// Edit overwrites one field of a contact.
func (r *Runner) Edit(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	id, err := contactID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	field, err := models.ParseField(cmd.String("field"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	updated, err := r.engine.Edit(ctx, id, field, cmd.String("value"))
	if err != nil {
		return fmt.Errorf("failed to edit contact %s: %w", id, err)
	}

	return r.writePlain("✓ Updated %s of %s (id %s)\n", field, updated.Name, updated.ID)
}

// Delete removes a contact, asking for confirmation unless --yes is set.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	id, err := contactID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	// The list is loaded first so the prompt can name the contact.
	if err := r.engine.LoadAll(ctx); err != nil {
		r.logger.Warn("could not load contacts before delete", "err", err)
	}

	skip := cmd.Bool("yes")
	deleted, err := r.engine.Delete(ctx, id, func(_ context.Context, c models.Contact) bool {
		if skip {
			return true
		}
		label := c.Name
		if label == "" {
			label = "contact " + id.String()
		}
		return r.confirm(fmt.Sprintf("Delete %s?", label))
	})

	switch {
	case !deleted:
		return r.writePlain("Cancelled.\n")
	case err != nil:
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}

	return r.writePlain("✓ Deleted contact %s, %d remaining\n", id, len(r.engine.Displayed()))
}

// Search filters the loaded list locally, or with --remote asks the store to search.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	keyword := cmd.StringArg("keyword")
	if cmd.Bool("remote") {
		results, err := r.engine.SearchRemote(ctx, keyword)
		if err != nil {
			return fmt.Errorf("remote search failed: %w", err)
		}
		if cmd.Bool("json") {
			return r.writeJSON(results, cmd.Bool("pretty"))
		}
		r.writePlainHeader(fmt.Sprintf("Store results for %q (%d)", keyword, len(results)))
		return r.writePlain("%s", formatter.ExportToText(results))
	}

	if err := r.engine.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	result := r.engine.FilterLocal(keyword)
	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}
	r.writePlainHeader(fmt.Sprintf("Matches for %q (%d)", result.Keyword, len(result.Contacts)))
	return r.writePlain("%s", formatter.FormatSearchResult(result))
}

// Reorder sets the order of every contact from positional ids.
func (r *Runner) Reorder(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one contact id", shared.ErrMissingArgument)
	}

	order := make([]models.ContactID, 0, len(args))
	for _, arg := range args {
		id, err := contactID(arg)
		if err != nil {
			return err
		}
		order = append(order, id)
	}

	if err := r.engine.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	result, err := r.engine.ReorderTo(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to reorder contacts: %w", err)
	}
	return r.reportOrder(result.Contacts, result.Warning)
}

// Move places one contact at a zero-based position.
func (r *Runner) Move(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	id, err := contactID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	raw := strings.TrimSpace(cmd.StringArg("position"))
	if raw == "" {
		return fmt.Errorf("%w: position", shared.ErrMissingArgument)
	}
	position, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: position %q is not a number", shared.ErrInvalidArgument, raw)
	}

	if err := r.engine.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	result, err := r.engine.Move(ctx, id, position)
	if err != nil {
		return fmt.Errorf("failed to move contact %s: %w", id, err)
	}
	return r.reportOrder(result.Contacts, result.Warning)
}

// reportOrder prints the committed order and surfaces a persistence warning without failing the command.
func (r *Runner) reportOrder(contacts models.ContactList, warning error) error {
	if warning != nil {
		r.logger.Warn("order not saved", "err", warning)
		r.writePlain("! Order applied locally but not saved: %v\n", warning)
	} else {
		r.writePlain("✓ Order saved\n")
	}
	return r.writePlain("%s", formatter.ExportToText(contacts))
}

// Export writes the full list in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.engine.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	contacts := r.engine.Displayed()
	path, err := formatter.WriteExport(contacts, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("export written", "path", path, "format", format, "contacts", len(contacts))
	return r.writePlain("✓ Exported %d contacts to %s\n", len(contacts), path)
}

// contactID validates a positional id argument.
func contactID(s string) (models.ContactID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: contact id", shared.ErrMissingArgument)
	}
	return models.ContactID(s), nil
}

// isUserError reports errors caused by input rather than the environment.
func isUserError(err error) bool {
	return errors.Is(err, shared.ErrValidation) ||
		errors.Is(err, shared.ErrMissingArgument) ||
		errors.Is(err, shared.ErrInvalidArgument) ||
		errors.Is(err, shared.ErrNotFound)
}
