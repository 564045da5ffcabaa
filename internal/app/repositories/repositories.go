package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx so the same statements can
// run standalone or inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// dbConn is the part of *pgxpool.Pool the repositories use.
type dbConn interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// statementBuilder is the squirrel builder for PostgreSQL placeholders.
var statementBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository           *UserRepository
	CompanyRepository        *CompanyRepository
	JobPostRepository        *JobPostRepository
	JobApplicationRepository *JobApplicationRepository
	StudentRepository        *StudentRepository
	TokenRepository          *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool, redisClient *redis.Client) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(db),
		CompanyRepository:        NewCompanyRepository(db),
		JobPostRepository:        NewJobPostRepository(db),
		JobApplicationRepository: NewJobApplicationRepository(db),
		StudentRepository:        NewStudentRepository(db),
		TokenRepository:          NewTokenRepository(redisClient),
	}
}

// exists runs SELECT EXISTS over the given filtered select.
func exists(ctx context.Context, q querier, table string, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := statementBuilder.Select("1").
		From(table).
		Where(where).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var found bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
