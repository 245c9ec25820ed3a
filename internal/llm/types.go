package llm

import "email-insight/backend/internal/llm/contract"

type Provider = contract.Provider

type ProviderConfig = contract.ProviderConfig

type HealthCheckResult = contract.HealthCheckResult

type UsageStats = contract.UsageStats

type UsageRecord = contract.UsageRecord
