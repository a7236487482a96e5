package mocks

//go:generate mockery --name EventStore --srcpkg github.com/aevon-lab/pulse/internal/core/storage --output ./storage --outpkg storagemocks
//go:generate mockery --name AggregateReader --srcpkg github.com/aevon-lab/pulse/internal/core/storage --output ./storage --outpkg storagemocks
//go:generate mockery --name Geocoder --srcpkg github.com/aevon-lab/pulse/internal/geo --output ./geo --outpkg geomocks
