package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(search)) + "%"
}

// paginate counts the rows matched by base, clamps the page and loads it into dest.
func paginate(ctx context.Context, db *sqlx.DB, dest interface{}, base squirrel.SelectBuilder, columns []string, orderBy []string, page, pageSize int) (models.Pagination, error) {
	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return models.Pagination{}, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return models.Pagination{}, fmt.Errorf("count rows: %w", err)
	}

	pagination := models.NewPagination(page, pageSize, total)
	listSQL, listArgs, err := base.Columns(columns...).
		OrderBy(orderBy...).
		Limit(uint64(pagination.PageSize)).
		Offset(uint64(pagination.Offset())).
		ToSql()
	if err != nil {
		return models.Pagination{}, fmt.Errorf("build list query: %w", err)
	}
	if err := db.SelectContext(ctx, dest, listSQL, listArgs...); err != nil {
		return models.Pagination{}, fmt.Errorf("list rows: %w", err)
	}
	return pagination, nil
}
