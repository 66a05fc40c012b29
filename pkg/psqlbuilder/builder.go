package psqlbuilder

import "github.com/Masterminds/squirrel"

// psql билдер с плейсхолдерами $1, $2, ...
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func Select(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...)
}

func Insert(table string) squirrel.InsertBuilder {
	return psql.Insert(table)
}

func Update(table string) squirrel.UpdateBuilder {
	return psql.Update(table)
}

func Delete(table string) squirrel.DeleteBuilder {
	return psql.Delete(table)
}
