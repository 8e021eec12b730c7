package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskup/internal/model"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Get возвращает членство пользователя в организации
func (r *MemberRepository) Get(ctx context.Context, orgID, userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	err := conn(ctx, r.db).
		Preload("User").
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// List возвращает всех участников организации
func (r *MemberRepository) List(ctx context.Context, orgID uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	err := conn(ctx, r.db).
		Preload("User").
		Where("organization_id = ?", orgID).
		Order("created_at").
		Find(&members).Error
	return members, err
}

// FirstOrganization returns the organization the user joined first
func (r *MemberRepository) FirstOrganization(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var member model.Member
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrMemberNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return member.OrganizationID, nil
}
