package repository

import "errors"

// ErrNotFound is returned instead of gorm.ErrRecordNotFound so callers do not
// depend on the ORM.
var ErrNotFound = errors.New("registro não encontrado")
