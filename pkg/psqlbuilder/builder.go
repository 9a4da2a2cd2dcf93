package psqlbuilder

import "github.com/Masterminds/squirrel"

// builder squirrel с PostgreSQL placeholder'ами ($1, $2, ...)
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select возвращает SELECT builder с $-placeholder'ами
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert возвращает INSERT builder с $-placeholder'ами
func Insert(into string) squirrel.InsertBuilder {
	return builder.Insert(into)
}

// Update возвращает UPDATE builder с $-placeholder'ами
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete возвращает DELETE builder с $-placeholder'ами
func Delete(from string) squirrel.DeleteBuilder {
	return builder.Delete(from)
}
