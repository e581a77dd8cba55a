package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/pkg/errors"
)

// Разбор общих query-параметров дашборда. Списки принимаются в виде
// years=2018,2019 или повторяющихся ключей years=2018&years=2019.

func parseIndicatorID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidIndicatorID
	}
	return id, nil
}

func parseIndicatorIDs(c *fiber.Ctx, fallback []int) ([]int, error) {
	raw := queryList(c, "indicators")
	if len(raw) == 0 {
		return fallback, nil
	}

	ids := make([]int, 0, len(raw))
	for _, p := range raw {
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, errors.ErrInvalidIndicatorID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseYears(c *fiber.Ctx) ([]int, error) {
	raw := queryList(c, "years")
	years := make([]int, 0, len(raw))
	for _, p := range raw {
		y, err := strconv.Atoi(p)
		if err != nil || y < 1990 || y > 2100 {
			return nil, errors.ErrInvalidYears
		}
		years = append(years, y)
	}
	return years, nil
}

func parseGenders(c *fiber.Ctx) ([]domain.Gender, error) {
	raw := queryList(c, "genders")
	genders := make([]domain.Gender, 0, len(raw))
	for _, p := range raw {
		g := domain.Gender(p)
		if !g.IsValid() {
			return nil, errors.ErrInvalidGender
		}
		genders = append(genders, g)
	}
	return genders, nil
}

func parseRegion(c *fiber.Ctx) (int, error) {
	raw := c.Query("region")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidRequest
	}
	return id, nil
}

func parseLang(c *fiber.Ctx) (string, error) {
	lang := c.Query("lang", "fi")
	switch lang {
	case "fi", "sv", "en":
		return lang, nil
	}
	return "", errors.ErrInvalidLanguage
}

// queryList собирает значения ключа, разворачивая запятые внутри
// каждого значения
func queryList(c *fiber.Ctx, key string) []string {
	values := make([]string, 0)
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
