package repository

import domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"

// offset and perPage normalize pagination params the same way
// pagination.PaginationParams.Validate does.
func offset(p *domainRepo.PaginationParams) int {
	return (page(p) - 1) * perPage(p)
}

func page(p *domainRepo.PaginationParams) int {
	if p == nil || p.Page < 1 {
		return 1
	}
	return p.Page
}

func perPage(p *domainRepo.PaginationParams) int {
	if p == nil || p.PerPage < 1 {
		return 15
	}
	if p.PerPage > 100 {
		return 100
	}
	return p.PerPage
}
