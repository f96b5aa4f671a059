package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"policytrack/internal/period"
	"policytrack/internal/service"
)

// GetDigest builds the change digest of one week or month.
//
// @Summary Period digest
// @Tags digest
// @Param type path string true "week or month"
// @Param year path int true "ISO year for weeks, calendar year for months"
// @Param period path int true "week 1-53 or month 1-12"
// @Success 200 {object} model.Digest
// @Failure 400 {object} errorPayload
// @Router /digest/{type}/{year}/{period} [get]
func GetDigest(digestSvc service.DigestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typ, err := period.ParseType(c.Params("type"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD_TYPE", "period type must be week or month")
		}
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "invalid year")
		}
		num, err := strconv.Atoi(c.Params("period"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "invalid period")
		}

		d, err := digestSvc.Build(c.UserContext(), typ, year, num)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(d)
	}
}

// ListPeriods lists the periods a digest can be requested for, newest first.
//
// @Summary Selectable digest periods
// @Tags digest
// @Param type path string true "week or month"
// @Success 200 {array} model.DigestPeriod
// @Router /digest/{type}/periods [get]
func ListPeriods(digestSvc service.DigestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typ, err := period.ParseType(c.Params("type"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD_TYPE", "period type must be week or month")
		}
		ps, err := digestSvc.Periods(c.UserContext(), typ)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": ps})
	}
}
