package profile

import (
	"fmt"
	"time"
)

// Политика смены имени: первые три смены свободны, после третьей
// действует период ожидания в 60 дней, по истечении которого счётчик
// сбрасывается и начинается новый цикл.
const (
	maxNameChanges = 3
	cooldownDays   = 60
)

// Decision — результат проверки политики. Политика сама ничего не пишет
// в хранилище: ResetCounter указывает вызывающей стороне, что перед
// применением изменения счётчик должен быть обнулён.
type Decision struct {
	Allowed               bool
	Reason                string
	CooldownDaysRemaining int
	ResetCounter          bool
}

// CanChangeName — чистая функция над состоянием счётчика и датой
// последней смены. Смены 1 и 2 не разделяются интервалом: ограничение
// срабатывает только после исчерпания трёх смен.
func CanChangeName(changeCount int, lastChange *time.Time, now time.Time) Decision {
	if changeCount == 0 {
		return Decision{Allowed: true}
	}

	if changeCount >= maxNameChanges {
		if lastChange != nil {
			daysSince := int(now.Sub(*lastChange).Hours() / 24)
			if daysSince < cooldownDays {
				remaining := cooldownDays - daysSince
				return Decision{
					Allowed:               false,
					Reason:                fmt.Sprintf("name change limit of %d exceeded, wait %d more days", maxNameChanges, remaining),
					CooldownDaysRemaining: remaining,
				}
			}
		}
		// Период ожидания истёк: разрешаем новый цикл, счётчик
		// обнуляется явно, а не молча.
		return Decision{Allowed: true, ResetCounter: true}
	}

	return Decision{Allowed: true}
}
