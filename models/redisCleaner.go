package models

import (
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list if exists
}

// remove both item & list
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	if err := obj.RemoveAllRedis(); err != nil {
		return err
	}
	return nil
}

func (obj Branch) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Branch](obj.ID)
}

func (obj Branch) RemoveAllRedis() error {
	return utils.RemoveRedisList[Branch](obj.AcademyId)
}

func (obj Member) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Member](obj.ID)
}

func (obj Member) RemoveAllRedis() error {
	return utils.RemoveRedisList[Member](obj.AcademyId)
}

func (obj Payment) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Payment](obj.ID)
}

func (obj Payment) RemoveAllRedis() error {
	return utils.RemoveRedisList[Payment](obj.AcademyId)
}

func (obj CalendarEvent) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[CalendarEvent](obj.ID)
}

func (obj CalendarEvent) RemoveAllRedis() error {
	return utils.RemoveRedisList[CalendarEvent](obj.AcademyId)
}

func (obj FinanceTransaction) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[FinanceTransaction](obj.ID)
}

func (obj FinanceTransaction) RemoveAllRedis() error {
	return utils.RemoveRedisList[FinanceTransaction](obj.AcademyId)
}

func (obj AttendanceRecord) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[AttendanceRecord](obj.ID)
}

func (obj AttendanceRecord) RemoveAllRedis() error {
	return utils.RemoveRedisList[AttendanceRecord](obj.AcademyId)
}
