package http

import (
	"encoding/json"

	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/gofiber/fiber/v2"
)

type tableRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type fieldRequest struct {
	Name      string          `json:"name"`
	FieldKind json.RawMessage `json:"field_kind"`
}

func (s *Server) listTables(c *fiber.Ctx) error {
	return c.JSON(s.store.ListTables())
}

func (s *Server) createTable(c *fiber.Ctx) error {
	var req tableRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	table, err := s.store.CreateTable(req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(table)
}

func (s *Server) updateTable(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}

	var req tableRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	table, err := s.store.UpdateTable(tableID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(table)
}

func (s *Server) deleteTable(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}
	return s.store.DeleteTable(tableID)
}

func (s *Server) getDataTable(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}

	data, err := s.store.GetDataTable(tableID)
	if err != nil {
		return err
	}
	return c.JSON(data)
}

func (s *Server) listFields(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}

	fields, err := s.store.ListFields(tableID)
	if err != nil {
		return err
	}
	return c.JSON(fields)
}

func (s *Server) createField(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}

	name, kind, err := decodeField(c)
	if err != nil {
		return err
	}

	field, err := s.store.CreateField(tableID, name, kind)
	if err != nil {
		return err
	}
	return c.JSON(field)
}

func (s *Server) updateField(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}
	fieldID, err := pathID(c, "field_id")
	if err != nil {
		return err
	}

	name, kind, err := decodeField(c)
	if err != nil {
		return err
	}

	field, err := s.store.UpdateField(tableID, fieldID, name, kind)
	if err != nil {
		return err
	}
	return c.JSON(field)
}

func (s *Server) deleteField(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}
	fieldID, err := pathID(c, "field_id")
	if err != nil {
		return err
	}
	return s.store.DeleteField(tableID, fieldID)
}

func (s *Server) createEntry(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}

	var cells types.Cells
	if err := decodeBody(c, &cells); err != nil {
		return err
	}

	entry, err := s.store.CreateEntry(tableID, cells)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (s *Server) updateEntry(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}
	entryID, err := pathID(c, "entry_id")
	if err != nil {
		return err
	}

	var cells types.Cells
	if err := decodeBody(c, &cells); err != nil {
		return err
	}

	entry, err := s.store.UpdateEntry(tableID, entryID, cells)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (s *Server) deleteEntry(c *fiber.Ctx) error {
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return err
	}
	entryID, err := pathID(c, "entry_id")
	if err != nil {
		return err
	}
	return s.store.DeleteEntry(tableID, entryID)
}

// decodeField reads a {name, field_kind} body. A body without a field kind
// passes a nil kind on for the store to reject.
func decodeField(c *fiber.Ctx) (string, types.FieldKind, error) {
	var req fieldRequest
	if err := decodeBody(c, &req); err != nil {
		return "", nil, err
	}

	if len(req.FieldKind) == 0 || string(req.FieldKind) == "null" {
		return req.Name, nil, nil
	}

	kind, err := types.DecodeFieldKind(req.FieldKind)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid field kind: "+err.Error())
	}
	return req.Name, kind, nil
}
