package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestFoldedLike(t *testing.T) {
	pg := &gorm.DB{Config: &gorm.Config{Dialector: postgres.Dialector{Config: &postgres.Config{}}}}
	assert.Equal(t, `name ILIKE ? ESCAPE '\'`, foldedLike(pg, "name"))

	assert.Equal(t, `LOWER(name) LIKE ? ESCAPE '\'`, foldedLike(newTestDB(t), "name"))
}

func TestContainsTerm(t *testing.T) {
	assert.Equal(t, `%100\%%`, containsTerm("100%"))
	assert.Equal(t, `%snake\_case%`, containsTerm("Snake_Case"))
	assert.Equal(t, `%back\\slash%`, containsTerm(`Back\Slash`))
}
