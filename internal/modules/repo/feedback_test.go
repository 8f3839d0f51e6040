package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/infra/db"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=signoff dbname=signoff sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true})
	require.NoError(t, err)
	return d
}

func TestUpsertApproval_SQL(t *testing.T) {
	stmt := upsertApproval(dryRunDB(t), &model.Approval{
		AssetID:       uuid.New(),
		StakeholderID: uuid.New(),
		Status:        model.ApprovalStatusApproved,
	}).Statement
	require.NoError(t, stmt.Error)

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `INSERT INTO "approvals"`)
	assert.Contains(t, sql, `ON CONFLICT ("asset_id","stakeholder_id") DO UPDATE SET`)
	for _, col := range []string{"status", "feedback", "approved_at", "updated_at"} {
		assert.Contains(t, sql, `"`+col+`"="excluded"."`+col+`"`)
	}
	// the row identity and its foreign keys are never overwritten
	for _, col := range []string{"id", "asset_id", "stakeholder_id", "created_at"} {
		assert.NotContains(t, sql, `"`+col+`"="excluded"."`+col+`"`)
	}
}

// postgresDB connects to SIGNOFF_TEST_DSN and applies migrations.
func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("SIGNOFF_TEST_DSN")
	if dsn == "" {
		t.Skip("SIGNOFF_TEST_DSN not set")
	}
	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	return d
}

func TestFeedbackRepo_SubmitFeedbackPostgres(t *testing.T) {
	d := postgresDB(t)
	ctx := context.Background()

	p := &model.Project{Name: "Acme Launch", AgencyUserID: uuid.New(), ClientCompany: "Acme Co"}
	require.NoError(t, NewProjectRepo(d).Create(ctx, p))
	t.Cleanup(func() { d.Delete(&model.Project{}, "id = ?", p.ID) })

	a := &model.Asset{ProjectID: p.ID, Name: "Hero Banner", FileURL: "https://cdn.signoff.test/hero.png",
		FileType: model.FileTypeImage, FileSize: 2048, CreatedBy: p.AgencyUserID}
	require.NoError(t, NewAssetRepo(d).Create(ctx, a))

	sh := &model.Stakeholder{ProjectID: p.ID, Name: "Jane Doe", Email: "jane@acme.co",
		AccessTokenHMAC: uuid.NewString(), CanApprove: true}
	require.NoError(t, NewStakeholderRepo(d).Create(ctx, sh))

	r := NewFeedbackRepo(d)
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := &model.Approval{AssetID: a.ID, StakeholderID: sh.ID}
	first.Apply(model.ApprovalStatusApproved, "", now)
	require.NoError(t, r.SubmitFeedback(ctx, nil, first))
	require.NotNil(t, first.ApprovedAt)

	text := "Colors are off"
	c := &model.Comment{AssetID: a.ID, AuthorName: sh.Name, AuthorEmail: sh.Email,
		AuthorType: model.AuthorTypeClient, Content: text}
	second := &model.Approval{AssetID: a.ID, StakeholderID: sh.ID}
	second.Apply(model.ApprovalStatusRejected, text, now.Add(time.Second))
	require.NoError(t, r.SubmitFeedback(ctx, c, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.ApprovalStatusRejected, second.Status)
	assert.Nil(t, second.ApprovedAt)
	require.NotNil(t, second.Feedback)
	assert.Equal(t, text, *second.Feedback)

	var approvals int64
	require.NoError(t, d.Model(&model.Approval{}).Where("asset_id = ?", a.ID).Count(&approvals).Error)
	assert.Equal(t, int64(1), approvals)

	var comments int64
	require.NoError(t, d.Model(&model.Comment{}).Where("asset_id = ?", a.ID).Count(&comments).Error)
	assert.Equal(t, int64(1), comments)
}
