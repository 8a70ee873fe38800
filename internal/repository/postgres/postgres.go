package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"jobboard/internal/common"
)

const (
	uniqueViolation     = "23505"
	invalidText         = "22P02"
	foreignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// dbError maps driver failures onto the service error codes.
func dbError(err error, entity, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewError(common.CodeNotFound, entity+" not found", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return common.NewError(common.CodeConflict, entity+" already exists", err)
		case invalidText:
			return common.NewError(common.CodeValidation, "invalid "+entity+" identifier", err)
		case foreignKeyViolation:
			return common.NewError(common.CodeValidation, entity+" references a missing record", err)
		}
	}
	return common.NewError(common.CodeInternal, "failed to "+action+" "+entity, err)
}

func expectRow(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, entity+" not found", sql.ErrNoRows)
	}
	return nil
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", common.NewError(common.CodeInternal, "failed to encode document", err)
	}
	return string(data), nil
}

func fromJSON(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return common.NewError(common.CodeInternal, "failed to decode document", err)
	}
	return nil
}

func uuidStrings(ids []common.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func uuidsFrom(values []string) []common.UUID {
	out := make([]common.UUID, 0, len(values))
	for _, v := range values {
		out = append(out, common.UUID(v))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type scanner interface {
	Scan(dest ...any) error
}
