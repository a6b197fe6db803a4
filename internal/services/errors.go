package services

import (
	"errors"

	"filemanager/internal/repositories"
	"filemanager/internal/storage"
	"filemanager/pkg/apperrors"
)

// mapError переводит ошибки репозиториев и хранилища в AppError.
// AppError пропускается как есть.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrFolderNotFound):
		return apperrors.ErrFolderNotFound.WithError(err)
	case errors.Is(err, repositories.ErrFileNotFound):
		return apperrors.ErrFileNotFound.WithError(err)
	case errors.Is(err, repositories.ErrTaskNotFound):
		return apperrors.ErrTaskNotFound.WithError(err)
	case errors.Is(err, repositories.ErrTagNotFound):
		return apperrors.ErrTagNotFound.WithError(err)
	case errors.Is(err, storage.ErrObjectNotFound):
		return apperrors.ErrObjectNotFound.WithError(err)
	default:
		return apperrors.DatabaseError(err)
	}
}

// dedupe сохраняет порядок первого появления
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
