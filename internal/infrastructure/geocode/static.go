package geocode

import (
	"context"
	"strings"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

const SourceStatic = "static"

// cityCoordinates covers the municipalities, provincial capitals and the
// usual tourist destinations. Values are Amap (GCJ-02) lng, lat.
var cityCoordinates = map[string]domain.Coordinates{
	"北京": {Lng: 116.407526, Lat: 39.904030},
	"上海": {Lng: 121.473701, Lat: 31.230416},
	"天津": {Lng: 117.190182, Lat: 39.125596},
	"重庆": {Lng: 106.504962, Lat: 29.533155},

	"石家庄":  {Lng: 114.502461, Lat: 38.045474},
	"太原":   {Lng: 112.549248, Lat: 37.857014},
	"呼和浩特": {Lng: 111.670801, Lat: 40.818311},
	"沈阳":   {Lng: 123.298195, Lat: 41.836753},
	"长春":   {Lng: 125.323544, Lat: 43.817071},
	"哈尔滨":  {Lng: 126.534967, Lat: 45.803775},
	"南京":   {Lng: 118.767413, Lat: 32.041544},
	"杭州":   {Lng: 120.153576, Lat: 30.287459},
	"合肥":   {Lng: 117.227239, Lat: 31.820586},
	"福州":   {Lng: 119.296531, Lat: 26.074508},
	"南昌":   {Lng: 115.857962, Lat: 28.682892},
	"济南":   {Lng: 117.000923, Lat: 36.675807},
	"郑州":   {Lng: 113.625368, Lat: 34.746599},
	"武汉":   {Lng: 114.298572, Lat: 30.584355},
	"长沙":   {Lng: 112.938814, Lat: 28.228209},
	"广州":   {Lng: 113.264385, Lat: 23.129110},
	"南宁":   {Lng: 108.366543, Lat: 22.817002},
	"海口":   {Lng: 110.199889, Lat: 20.017756},
	"成都":   {Lng: 104.066541, Lat: 30.572269},
	"贵阳":   {Lng: 106.630153, Lat: 26.647661},
	"昆明":   {Lng: 102.832891, Lat: 24.880095},
	"拉萨":   {Lng: 91.132212, Lat: 29.660361},
	"西安":   {Lng: 108.948024, Lat: 34.263161},
	"兰州":   {Lng: 103.834303, Lat: 36.061089},
	"西宁":   {Lng: 101.778228, Lat: 36.617144},
	"银川":   {Lng: 106.230909, Lat: 38.487193},
	"乌鲁木齐": {Lng: 87.616848, Lat: 43.825592},

	"三亚":  {Lng: 109.511909, Lat: 18.252847},
	"厦门":  {Lng: 118.089425, Lat: 24.479833},
	"青岛":  {Lng: 120.382631, Lat: 36.067108},
	"大连":  {Lng: 121.614682, Lat: 38.914003},
	"苏州":  {Lng: 120.585315, Lat: 31.298886},
	"桂林":  {Lng: 110.290175, Lat: 25.274215},
	"丽江":  {Lng: 100.229068, Lat: 26.875353},
	"黄山":  {Lng: 118.317765, Lat: 29.709231},
	"张家界": {Lng: 110.479146, Lat: 29.117094},
	"九寨沟": {Lng: 103.914864, Lat: 33.254381},
	"敦煌":  {Lng: 94.661965, Lat: 40.142118},
	"承德":  {Lng: 117.963678, Lat: 40.951069},
	"北戴河": {Lng: 119.488617, Lat: 39.818945},
	"山海关": {Lng: 119.789459, Lat: 39.867708},
	"五台山": {Lng: 113.496668, Lat: 38.849429},
	"平遥":  {Lng: 112.188833, Lat: 37.195556},
	"开封":  {Lng: 114.307483, Lat: 34.797108},
	"洛阳":  {Lng: 112.433713, Lat: 34.668480},
	"泰山":  {Lng: 117.101341, Lat: 36.254277},
	"曲阜":  {Lng: 117.004289, Lat: 35.600359},
	"连云港": {Lng: 119.221611, Lat: 34.596636},
}

// Static resolves names from the built-in city table.
type Static struct{}

func (Static) Lookup(_ context.Context, name string) (*domain.Location, error) {
	key := strings.TrimSpace(name)
	coords, ok := cityCoordinates[key]
	if !ok {
		key = strings.NewReplacer("市", "", "省", "").Replace(key)
		coords, ok = cityCoordinates[key]
	}
	if !ok {
		return nil, domain.ErrLocationNotFound
	}
	return &domain.Location{Name: key, Coordinates: coords, Source: SourceStatic}, nil
}
