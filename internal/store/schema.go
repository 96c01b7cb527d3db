package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	questionsTable = "questions"
	groupsTable    = "question_groups"
	appStateTable  = "app_state"
)

var (
	// QuestionsColumns holds the columns for the "questions" table. The
	// classification columns are copies of fields inside data, kept for
	// indexed lookups.
	QuestionsColumns = []*schema.Column{
		{Name: "question_id", Type: field.TypeString, Unique: true},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "sub_category", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString, Default: ""},
		{Name: "year", Type: field.TypeString, Default: ""},
		{Name: "group_id", Type: field.TypeString, Default: ""},
		{Name: "data", Type: field.TypeString},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       questionsTable,
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "question_category",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[1]},
			},
			{
				Name:    "question_provider",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[3]},
			},
			{
				Name:    "question_year",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[4]},
			},
			{
				Name:    "question_group_id",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[5]},
			},
		},
	}
	// GroupsColumns holds the columns for the "question_groups" table.
	GroupsColumns = []*schema.Column{
		{Name: "group_id", Type: field.TypeString, Unique: true},
		{Name: "data", Type: field.TypeString},
	}
	// GroupsTable holds the schema information for the "question_groups" table.
	GroupsTable = &schema.Table{
		Name:       groupsTable,
		Columns:    GroupsColumns,
		PrimaryKey: []*schema.Column{GroupsColumns[0]},
	}
	// AppStateColumns holds the columns for the "app_state" table.
	AppStateColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeString},
	}
	// AppStateTable holds the schema information for the "app_state" table.
	AppStateTable = &schema.Table{
		Name:       appStateTable,
		Columns:    AppStateColumns,
		PrimaryKey: []*schema.Column{AppStateColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		QuestionsTable,
		GroupsTable,
		AppStateTable,
	}
)
